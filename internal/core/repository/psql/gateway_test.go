package psql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/profile-service/internal/core/domain"
)

var userColumns = []string{"id", "first_name", "last_name", "created_at", "updated_at", "deleted_at"}
var contactColumns = []string{"id", "phone_number", "email", "user_id", "created_at", "updated_at", "deleted_at"}

func TestBuildInsert(t *testing.T) {
	query, args := buildInsert(domain.ContactTable, domain.Values{
		domain.ColumnUserID:      int64(7),
		domain.ColumnPhoneNumber: "0804567890",
		domain.ColumnEmail:       nil,
	})

	assert.Equal(t, `INSERT INTO "contact" ("email", "phone_number", "user_id") VALUES ($1, $2, $3) RETURNING *`, query)
	assert.Equal(t, []any{nil, "0804567890", int64(7)}, args)
}

func TestBuildUpdate(t *testing.T) {
	deletedAt := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		cond      domain.Condition
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "with condition",
			cond:      domain.Live(3),
			wantQuery: `UPDATE "user" SET "deleted_at" = $1 WHERE "id" = $2 AND "deleted_at" IS NULL RETURNING *`,
			wantArgs:  []any{deletedAt, int64(3)},
		},
		{
			name:      "without condition",
			cond:      nil,
			wantQuery: `UPDATE "user" SET "deleted_at" = $1 RETURNING *`,
			wantArgs:  []any{deletedAt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildUpdate(domain.UserTable, domain.Values{domain.ColumnDeletedAt: deletedAt}, tt.cond)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestGatewayInsertReturnsRow(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO "user" ("first_name", "last_name") VALUES ($1, $2) RETURNING *`).
		WithArgs("John", "Doe").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(42, "John", "Doe", now, now, nil))

	var users []domain.UserEntity
	err := NewGateway().Insert(context.Background(), db, domain.UserTable, domain.Values{
		domain.ColumnFirstName: "John",
		domain.ColumnLastName:  "Doe",
	}, &users)

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(42), users[0].ID)
	assert.Equal(t, "John", users[0].FirstName)
	assert.Nil(t, users[0].DeletedAt)
}

func TestGatewayInsertRejectsEmptyValues(t *testing.T) {
	db, _ := newMockDB(t)

	var users []domain.UserEntity
	err := NewGateway().Insert(context.Background(), db, domain.UserTable, domain.Values{}, &users)

	assert.ErrorIs(t, err, domain.ErrNoValues)
}

func TestGatewayInsertPropagatesStorageError(t *testing.T) {
	db, mock := newMockDB(t)
	storageErr := errors.New("violates foreign key constraint")

	mock.ExpectQuery(`INSERT INTO "contact" ("email", "phone_number", "user_id") VALUES ($1, $2, $3) RETURNING *`).
		WithArgs(nil, "0804567890", int64(99)).
		WillReturnError(storageErr)

	var contacts []domain.ContactEntity
	err := NewGateway().Insert(context.Background(), db, domain.ContactTable, domain.Values{
		domain.ColumnUserID:      int64(99),
		domain.ColumnPhoneNumber: "0804567890",
		domain.ColumnEmail:       nil,
	}, &contacts)

	assert.ErrorIs(t, err, storageErr)
	assert.Empty(t, contacts)
}

func TestGatewayUpdateReturnsMatchedRows(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	email := "john@example.com"

	mock.ExpectQuery(`UPDATE "contact" SET "email" = $1, "phone_number" = $2 WHERE "id" = $3 AND "deleted_at" IS NULL RETURNING *`).
		WithArgs(email, "0804567891", int64(5)).
		WillReturnRows(sqlmock.NewRows(contactColumns).AddRow(5, "0804567891", email, 1, now, now, nil))

	var contacts []domain.ContactEntity
	err := NewGateway().Update(context.Background(), db, domain.ContactTable, domain.Values{
		domain.ColumnPhoneNumber: "0804567891",
		domain.ColumnEmail:       &email,
	}, domain.Live(5), &contacts)

	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, int64(1), contacts[0].UserID)
	assert.Equal(t, "0804567891", contacts[0].PhoneNumber)
	require.NotNil(t, contacts[0].Email)
	assert.Equal(t, email, *contacts[0].Email)
}

func TestGatewayUpdateNoMatchIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`UPDATE "user" SET "first_name" = $1 WHERE "id" = $2 AND "deleted_at" IS NULL RETURNING *`).
		WithArgs("Jane", int64(8)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	var users []domain.UserEntity
	err := NewGateway().Update(context.Background(), db, domain.UserTable,
		domain.Values{domain.ColumnFirstName: "Jane"}, domain.Live(8), &users)

	require.NoError(t, err)
	assert.Empty(t, users)
}
