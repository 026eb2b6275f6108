package domain

// Table names a persisted table.
type Table string

const (
	UserTable    Table = "user"
	ContactTable Table = "contact"
)

// Column names shared by the user and contact tables.
const (
	ColumnID          = "id"
	ColumnUserID      = "user_id"
	ColumnFirstName   = "first_name"
	ColumnLastName    = "last_name"
	ColumnPhoneNumber = "phone_number"
	ColumnEmail       = "email"
	ColumnUpdatedAt   = "updated_at"
	ColumnDeletedAt   = "deleted_at"
)

// Values maps column names to the values written by an insert or update.
type Values map[string]any

// Operator is a comparison used in a Predicate.
type Operator int

const (
	OpEq Operator = iota
	OpIsNull
)

// Predicate is a single column comparison.
type Predicate struct {
	Column string
	Op     Operator
	Value  any
}

// Condition is a conjunction of predicates. An empty Condition matches every row.
type Condition []Predicate

func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

func IsNull(column string) Predicate {
	return Predicate{Column: column, Op: OpIsNull}
}

// Where joins predicates with AND.
func Where(preds ...Predicate) Condition {
	return Condition(preds)
}

// And returns a new condition matching both c and other.
func (c Condition) And(other Condition) Condition {
	out := make(Condition, 0, len(c)+len(other))
	out = append(out, c...)
	return append(out, other...)
}

// Live matches rows of the given id that are not soft-deleted.
func Live(id int64) Condition {
	return Where(Eq(ColumnID, id), IsNull(ColumnDeletedAt))
}
