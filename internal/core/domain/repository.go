package domain

import "context"

// Tx is an open transaction as seen by the storage gateway.
type Tx interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// TxRunner runs fn inside one transaction: commit when fn returns nil, roll back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// StorageGateway writes a single table inside an open transaction.
// dest must be a pointer to a slice of row structs; it receives the written rows.
type StorageGateway interface {
	Insert(ctx context.Context, tx Tx, table Table, values Values, dest any) error
	Update(ctx context.Context, tx Tx, table Table, values Values, cond Condition, dest any) error
}

// ProfileRepository reads profiles, always excluding soft-deleted users and contacts.
type ProfileRepository interface {
	// FindFirst returns nil, nil when no live user has the id.
	FindFirst(ctx context.Context, userID int64) (*Profile, error)
	// FindMany narrows the live rows by the optional extra conditions.
	FindMany(ctx context.Context, userCond, contactCond Condition) ([]Profile, error)
}
