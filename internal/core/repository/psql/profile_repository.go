package psql

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/profile-service/internal/core/domain"
	"github.com/duynhne/profile-service/middleware"
)

const (
	userAlias    = "u"
	contactAlias = "c"
)

// profileRow is one row of the user/contact join. Contact columns are NULL for users
// without live contacts.
type profileRow struct {
	UserID      int64   `db:"user_id"`
	FirstName   string  `db:"first_name"`
	LastName    string  `db:"last_name"`
	ContactID   *int64  `db:"contact_id"`
	PhoneNumber *string `db:"phone_number"`
	Email       *string `db:"email"`
}

// ProfileRepository implements domain.ProfileRepository using PostgreSQL
type ProfileRepository struct {
	db queryer
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db queryer) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var _ domain.ProfileRepository = (*ProfileRepository)(nil)

// FindFirst returns the live profile for userID, or nil when there is none.
func (r *ProfileRepository) FindFirst(ctx context.Context, userID int64) (*domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "db.profile.find_first", trace.WithAttributes(
		attribute.String("layer", "repository"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	profiles, err := r.find(ctx, domain.Where(domain.Eq(domain.ColumnID, userID)), nil)
	if err != nil {
		middleware.RecordError(span, err)
		return nil, fmt.Errorf("find profile %d: %w", userID, err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// FindMany returns every live profile matching the optional conditions, ordered by user id.
func (r *ProfileRepository) FindMany(ctx context.Context, userCond, contactCond domain.Condition) ([]domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "db.profile.find_many", trace.WithAttributes(
		attribute.String("layer", "repository"),
	))
	defer span.End()

	profiles, err := r.find(ctx, userCond, contactCond)
	if err != nil {
		middleware.RecordError(span, err)
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	span.SetAttributes(attribute.Int("profile.count", len(profiles)))
	return profiles, nil
}

func (r *ProfileRepository) find(ctx context.Context, userCond, contactCond domain.Condition) ([]domain.Profile, error) {
	query, args := buildProfileQuery(userCond, contactCond)

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return groupProfiles(rows), nil
}

// buildProfileQuery joins live users to their live contacts. Extra contact predicates go into
// the join so users without matching contacts are still returned.
func buildProfileQuery(userCond, contactCond domain.Condition) (string, []any) {
	u := func(column string) string { return ident(userAlias, column) }
	c := func(column string) string { return ident(contactAlias, column) }

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s AS user_id, %s, %s, %s AS contact_id, %s, %s",
		u(domain.ColumnID), u(domain.ColumnFirstName), u(domain.ColumnLastName),
		c(domain.ColumnID), c(domain.ColumnPhoneNumber), c(domain.ColumnEmail))
	fmt.Fprintf(&b, " FROM %s AS %s LEFT JOIN %s AS %s ON %s = %s AND %s IS NULL",
		ident(string(domain.UserTable)), userAlias, ident(string(domain.ContactTable)), contactAlias,
		c(domain.ColumnUserID), u(domain.ColumnID), c(domain.ColumnDeletedAt))

	contactClause, args := renderCondition(contactCond, contactAlias, 0)
	if contactClause != "" {
		b.WriteString(" AND ")
		b.WriteString(contactClause)
	}

	live := domain.Where(domain.IsNull(domain.ColumnDeletedAt)).And(userCond)
	userClause, userArgs := renderCondition(live, userAlias, len(args))
	b.WriteString(" WHERE ")
	b.WriteString(userClause)
	args = append(args, userArgs...)

	fmt.Fprintf(&b, " ORDER BY %s, %s", u(domain.ColumnID), c(domain.ColumnID))
	return b.String(), args
}

// groupProfiles folds joined rows (ordered by user id) into profiles, dropping timestamps.
func groupProfiles(rows []profileRow) []domain.Profile {
	profiles := make([]domain.Profile, 0)
	for _, row := range rows {
		n := len(profiles)
		if n == 0 || profiles[n-1].User.ID != row.UserID {
			profiles = append(profiles, domain.Profile{
				User: domain.User{
					ID:        row.UserID,
					FirstName: row.FirstName,
					LastName:  row.LastName,
				},
				Contacts: []domain.Contact{},
			})
			n++
		}
		if row.ContactID == nil {
			continue
		}
		contact := domain.Contact{ID: *row.ContactID, Email: row.Email}
		if row.PhoneNumber != nil {
			contact.PhoneNumber = *row.PhoneNumber
		}
		profiles[n-1].Contacts = append(profiles[n-1].Contacts, contact)
	}
	return profiles
}
