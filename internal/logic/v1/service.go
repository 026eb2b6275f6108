package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/profile-service/internal/core/domain"
	"github.com/duynhne/profile-service/middleware"
)

// errNoRowReturned is returned when an insert yields no row to read the generated id from.
var errNoRowReturned = errors.New("insert returned no row")

// ProfileService orchestrates reads and transactional writes of the user + contacts aggregate.
type ProfileService struct {
	repo    domain.ProfileRepository
	gateway domain.StorageGateway
	runner  domain.TxRunner
	logger  *zap.Logger
	now     func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(repo domain.ProfileRepository, gateway domain.StorageGateway, runner domain.TxRunner, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		repo:    repo,
		gateway: gateway,
		runner:  runner,
		logger:  logger,
		now:     time.Now,
	}
}

// Create inserts the user, then each contact in input order with the generated user id.
// Nothing is persisted unless every insert succeeds.
func (s *ProfileService) Create(ctx context.Context, req domain.ProfileCreateRequest) (err error) {
	ctx, span := middleware.StartSpan(ctx, "profile.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("contacts.count", len(req.Contacts)),
	))
	defer span.End()
	defer observe(opCreate, time.Now(), &err)

	var userID int64
	err = s.runner.InTx(ctx, func(tx domain.Tx) error {
		var users []domain.UserEntity
		if err := s.gateway.Insert(ctx, tx, domain.UserTable, domain.Values{
			domain.ColumnFirstName: req.User.FirstName,
			domain.ColumnLastName:  req.User.LastName,
		}, &users); err != nil {
			return err
		}
		if len(users) == 0 {
			return fmt.Errorf("insert into %s: %w", domain.UserTable, errNoRowReturned)
		}
		userID = users[0].ID

		for _, contact := range req.Contacts {
			var rows []domain.ContactEntity
			if err := s.gateway.Insert(ctx, tx, domain.ContactTable, domain.Values{
				domain.ColumnUserID:      userID,
				domain.ColumnPhoneNumber: contact.PhoneNumber,
				domain.ColumnEmail:       contact.Email,
			}, &rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		middleware.RecordError(span, err)
		return fmt.Errorf("create profile: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", userID))
	s.logger.Debug("Profile created", zap.Int64("user_id", userID), zap.Int("contacts", len(req.Contacts)))
	return nil
}

// Get returns the live profile for id or ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, id int64) (_ *domain.Profile, err error) {
	ctx, span := middleware.StartSpan(ctx, "profile.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", id),
	))
	defer span.End()
	defer observe(opGet, time.Now(), &err)

	profile, err := s.find(ctx, id)
	if err != nil {
		middleware.RecordError(span, err)
		return nil, err
	}
	return profile, nil
}

// GetAll returns every live profile ordered by user id. No users is an empty slice.
func (s *ProfileService) GetAll(ctx context.Context) (_ []domain.Profile, err error) {
	ctx, span := middleware.StartSpan(ctx, "profile.get_all", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()
	defer observe(opGetAll, time.Now(), &err)

	profiles, err := s.repo.FindMany(ctx, nil, nil)
	if err != nil {
		middleware.RecordError(span, err)
		return nil, fmt.Errorf("get all profiles: %w", err)
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	span.SetAttributes(attribute.Int("profile.count", len(profiles)))
	return profiles, nil
}

// Update rewrites the user's names and each listed contact. The existence check runs before
// the transaction opens. Contact ids are matched by id alone, not by owner.
func (s *ProfileService) Update(ctx context.Context, req domain.ProfileUpdateRequest) (err error) {
	ctx, span := middleware.StartSpan(ctx, "profile.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", req.User.ID),
		attribute.Int("contacts.count", len(req.Contacts)),
	))
	defer span.End()
	defer observe(opUpdate, time.Now(), &err)

	if _, err = s.find(ctx, req.User.ID); err != nil {
		middleware.RecordError(span, err)
		return err
	}

	updatedAt := s.now()
	err = s.runner.InTx(ctx, func(tx domain.Tx) error {
		var users []domain.UserEntity
		if err := s.gateway.Update(ctx, tx, domain.UserTable, domain.Values{
			domain.ColumnFirstName: req.User.FirstName,
			domain.ColumnLastName:  req.User.LastName,
			domain.ColumnUpdatedAt: updatedAt,
		}, domain.Live(req.User.ID), &users); err != nil {
			return err
		}

		for _, contact := range req.Contacts {
			var rows []domain.ContactEntity
			if err := s.gateway.Update(ctx, tx, domain.ContactTable, domain.Values{
				domain.ColumnPhoneNumber: contact.PhoneNumber,
				domain.ColumnEmail:       contact.Email,
				domain.ColumnUpdatedAt:   updatedAt,
			}, domain.Live(contact.ID), &rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		middleware.RecordError(span, err)
		return fmt.Errorf("update profile %d: %w", req.User.ID, err)
	}

	s.logger.Debug("Profile updated", zap.Int64("user_id", req.User.ID), zap.Int("contacts", len(req.Contacts)))
	return nil
}

// Delete soft-deletes the profile at the current time.
func (s *ProfileService) Delete(ctx context.Context, id int64) error {
	return s.DeleteAt(ctx, id, s.now())
}

// DeleteAt stamps deletedAt on the user and on every contact that was live at lookup time,
// all with the same value.
func (s *ProfileService) DeleteAt(ctx context.Context, id int64, deletedAt time.Time) (err error) {
	ctx, span := middleware.StartSpan(ctx, "profile.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", id),
	))
	defer span.End()
	defer observe(opDelete, time.Now(), &err)

	profile, err := s.find(ctx, id)
	if err != nil {
		middleware.RecordError(span, err)
		return err
	}

	err = s.runner.InTx(ctx, func(tx domain.Tx) error {
		var users []domain.UserEntity
		if err := s.gateway.Update(ctx, tx, domain.UserTable, domain.Values{
			domain.ColumnDeletedAt: deletedAt,
		}, domain.Live(id), &users); err != nil {
			return err
		}

		for _, contact := range profile.Contacts {
			var rows []domain.ContactEntity
			if err := s.gateway.Update(ctx, tx, domain.ContactTable, domain.Values{
				domain.ColumnDeletedAt: deletedAt,
			}, domain.Live(contact.ID), &rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		middleware.RecordError(span, err)
		return fmt.Errorf("delete profile %d: %w", id, err)
	}

	s.logger.Debug("Profile deleted", zap.Int64("user_id", id), zap.Int("contacts", len(profile.Contacts)))
	return nil
}

func (s *ProfileService) find(ctx context.Context, id int64) (*domain.Profile, error) {
	profile, err := s.repo.FindFirst(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", id, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("get profile %d: %w", id, domain.ErrProfileNotFound)
	}
	return profile, nil
}
