package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	dbpkg "github.com/b4platform/b4-backend/pkg/db"
	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sessionRevoker interface {
	Revoke(ctx context.Context, accessID string) error
}

type refreshRevoker interface {
	RevokeRefreshToken(ctx context.Context, userID string) error
}

// Service exposes profile and account lifecycle operations.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileDTO) (*UserDTO, error)
	DeleteAccount(ctx context.Context, params DeleteAccountParams) error
	Roles(ctx context.Context, userID uuid.UUID) ([]enums.PlatformRole, error)
	UserHasRole(ctx context.Context, userID uuid.UUID, roles ...enums.PlatformRole) (bool, error)
	GrantRole(ctx context.Context, userID uuid.UUID, role enums.PlatformRole, grantedBy *uuid.UUID) error
}

// DeleteAccountParams selects the deletion mode for an account.
// AccessID identifies the caller's session so it can be revoked after commit.
type DeleteAccountParams struct {
	UserID   uuid.UUID
	AccessID string
	Hard     bool
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	sessions sessionRevoker
	refresh  refreshRevoker
	logg     *logger.Logger
}

// NewService wires the users service dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	publisher outboxPublisher,
	sessions sessionRevoker,
	refresh refreshRevoker,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager required")
	}
	if refresh == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "refresh token store required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   publisher,
		sessions: sessions,
		refresh:  refresh,
		logg:     logg,
	}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileDTO) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	fields := map[string]any{}
	setRequired := func(column string, value *string) error {
		if value == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, column+" cannot be empty")
		}
		fields[column] = trimmed
		return nil
	}
	if err := setRequired("first_name", input.FirstName); err != nil {
		return nil, err
	}
	if err := setRequired("last_name", input.LastName); err != nil {
		return nil, err
	}
	// Optional fields may be cleared by sending an empty string.
	setOptional := func(column string, value *string) {
		if value == nil {
			return
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			fields[column] = nil
			return
		}
		fields[column] = trimmed
	}
	setOptional("phone", input.Phone)
	setOptional("bio", input.Bio)
	setOptional("location", input.Location)
	setOptional("linkedin_url", input.LinkedinURL)

	if len(fields) > 0 {
		if err := s.repo.UpdateProfile(ctx, userID, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
	}

	return s.Profile(ctx, userID)
}

func (s *service) DeleteAccount(ctx context.Context, params DeleteAccountParams) error {
	if params.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindByID(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.IsDeleted && !params.Hard {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account already deleted")
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if params.Hard {
			if err := repo.PurgeUserData(ctx, params.UserID); err != nil {
				return err
			}
			if err := repo.HardDelete(ctx, params.UserID); err != nil {
				return err
			}
		} else if err := repo.SoftDelete(ctx, params.UserID, now); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAccountDeleted,
			AggregateType: enums.AggregateUser,
			AggregateID:   params.UserID,
			Actor:         &outbox.ActorRef{UserID: params.UserID, Role: string(enums.PlatformRoleUser)},
			Data: payloads.AccountDeletedEvent{
				UserID:    params.UserID,
				Hard:      params.Hard,
				DeletedAt: now,
			},
			Version: 1,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account")
	}

	var revokeErr error
	if params.AccessID != "" {
		revokeErr = multierr.Append(revokeErr, s.sessions.Revoke(ctx, params.AccessID))
	}
	revokeErr = multierr.Append(revokeErr, s.refresh.RevokeRefreshToken(ctx, params.UserID.String()))
	if revokeErr != nil {
		// The account is gone either way; surface the cleanup failure.
		if s.logg != nil {
			s.logg.Warn(ctx, "session revocation after account deletion failed")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, revokeErr, "revoke sessions")
	}

	return nil
}

func (s *service) Roles(ctx context.Context, userID uuid.UUID) ([]enums.PlatformRole, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	grants, err := s.repo.RolesFor(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list roles")
	}

	roles := make([]enums.PlatformRole, 0, len(grants))
	for _, grant := range grants {
		roles = append(roles, grant.Role)
	}
	return roles, nil
}

func (s *service) UserHasRole(ctx context.Context, userID uuid.UUID, roles ...enums.PlatformRole) (bool, error) {
	if userID == uuid.Nil || len(roles) == 0 {
		return false, nil
	}
	ok, err := s.repo.HasAnyRole(ctx, userID, roles)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check roles")
	}
	return ok, nil
}

// GrantRole inserts a role grant. Granting a role the user already holds is a
// no-op so admin approvals can be retried safely.
func (s *service) GrantRole(ctx context.Context, userID uuid.UUID, role enums.PlatformRole, grantedBy *uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	err := s.repo.GrantRole(ctx, &models.UserRole{
		UserID:    userID,
		Role:      role,
		GrantedBy: grantedBy,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_user_roles_user_role") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grant role")
	}
	return nil
}
