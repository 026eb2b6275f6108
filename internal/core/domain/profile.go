package domain

import "time"

// User is the API view of a user row (timestamps are never exposed).
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Contact is the API view of a contact row.
type Contact struct {
	ID          int64   `json:"id"`
	PhoneNumber string  `json:"phoneNumber"`
	Email       *string `json:"email"`
}

// Profile is a user together with its live contacts.
type Profile struct {
	User     User      `json:"user"`
	Contacts []Contact `json:"contacts"`
}

// UserEntity mirrors a row of the "user" table.
type UserEntity struct {
	ID        int64      `db:"id"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// ContactEntity mirrors a row of the contact table.
type ContactEntity struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	PhoneNumber string     `db:"phone_number"`
	Email       *string    `db:"email"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type UserCreateFields struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=256"`
	LastName  string `json:"lastName" binding:"required,min=1,max=256"`
}

type ContactCreateFields struct {
	PhoneNumber string  `json:"phoneNumber" binding:"required,jpphone"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

// ProfileCreateRequest is the body of POST /profile/create.
type ProfileCreateRequest struct {
	User     UserCreateFields      `json:"user"`
	Contacts []ContactCreateFields `json:"contacts" binding:"required,dive"`
}

type UserUpdateFields struct {
	ID        int64  `json:"id" binding:"required,gt=0"`
	FirstName string `json:"firstName" binding:"required,min=1,max=256"`
	LastName  string `json:"lastName" binding:"required,min=1,max=256"`
}

type ContactUpdateFields struct {
	ID          int64   `json:"id" binding:"required,gt=0"`
	PhoneNumber string  `json:"phoneNumber" binding:"required,jpphone"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

// ProfileUpdateRequest is the body of PUT /profile/update.
// Contact ids are not checked against user.id.
type ProfileUpdateRequest struct {
	User     UserUpdateFields      `json:"user"`
	Contacts []ContactUpdateFields `json:"contacts" binding:"required,dive"`
}
