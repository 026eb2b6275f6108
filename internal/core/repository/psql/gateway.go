package psql

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/profile-service/internal/core/domain"
	"github.com/duynhne/profile-service/middleware"
)

// Gateway implements domain.StorageGateway. It carries no business rules: every call is a
// single statement on the transaction it is handed.
type Gateway struct{}

// NewGateway creates a new PostgreSQL storage gateway
func NewGateway() *Gateway {
	return &Gateway{}
}

var _ domain.StorageGateway = (*Gateway)(nil)

// Insert writes one row into table and scans the inserted row into dest.
func (g *Gateway) Insert(ctx context.Context, tx domain.Tx, table domain.Table, values domain.Values, dest any) error {
	ctx, span := middleware.StartSpan(ctx, "db.insert", trace.WithAttributes(
		attribute.String("layer", "repository"),
		attribute.String("db.table", string(table)),
	))
	defer span.End()

	if len(values) == 0 {
		return fmt.Errorf("insert into %s: %w", table, domain.ErrNoValues)
	}

	query, args := buildInsert(table, values)
	if err := tx.SelectContext(ctx, dest, query, args...); err != nil {
		middleware.RecordError(span, err)
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Update sets values on every row of table matching cond and scans the updated rows into dest.
// Zero matching rows is not an error.
func (g *Gateway) Update(ctx context.Context, tx domain.Tx, table domain.Table, values domain.Values, cond domain.Condition, dest any) error {
	ctx, span := middleware.StartSpan(ctx, "db.update", trace.WithAttributes(
		attribute.String("layer", "repository"),
		attribute.String("db.table", string(table)),
	))
	defer span.End()

	if len(values) == 0 {
		return fmt.Errorf("update %s: %w", table, domain.ErrNoValues)
	}

	query, args := buildUpdate(table, values, cond)
	if err := tx.SelectContext(ctx, dest, query, args...); err != nil {
		middleware.RecordError(span, err)
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}
