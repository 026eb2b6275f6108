package psql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/profile-service/internal/core/domain"
)

// queryer is satisfied by *sqlx.DB and *sqlx.Tx.
type queryer interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// ident quotes a (optionally alias-qualified) identifier: ident("u", "id") -> "u"."id".
func ident(parts ...string) string {
	return pgx.Identifier(parts).Sanitize()
}

// renderCondition renders cond as an AND-joined clause whose placeholders start after argOffset.
// An empty condition renders as "".
func renderCondition(cond domain.Condition, alias string, argOffset int) (string, []any) {
	if len(cond) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(cond))
	var args []any
	for _, p := range cond {
		column := qualify(alias, p.Column)
		switch p.Op {
		case domain.OpIsNull:
			clauses = append(clauses, column+" IS NULL")
		default:
			args = append(args, p.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", column, argOffset+len(args)))
		}
	}
	return strings.Join(clauses, " AND "), args
}

func qualify(alias, column string) string {
	if alias == "" {
		return ident(column)
	}
	return ident(alias, column)
}

// sortedColumns returns the keys of values in lexical order so generated SQL is stable.
func sortedColumns(values domain.Values) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// buildInsert renders INSERT ... RETURNING * for one row.
func buildInsert(table domain.Table, values domain.Values) (string, []any) {
	columns := sortedColumns(values)
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		quoted[i] = ident(column)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[column]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		ident(string(table)), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return query, args
}

// buildUpdate renders UPDATE ... SET ... [WHERE ...] RETURNING *.
func buildUpdate(table domain.Table, values domain.Values, cond domain.Condition) (string, []any) {
	columns := sortedColumns(values)
	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(cond))
	for i, column := range columns {
		args = append(args, values[column])
		assignments[i] = fmt.Sprintf("%s = $%d", ident(column), i+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", ident(string(table)), strings.Join(assignments, ", "))
	if clause, condArgs := renderCondition(cond, "", len(args)); clause != "" {
		b.WriteString(" WHERE ")
		b.WriteString(clause)
		args = append(args, condArgs...)
	}
	b.WriteString(" RETURNING *")
	return b.String(), args
}
