package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/events"
	"github.com/spec-kit/restaurant-portal/internal/repository"
	apperrors "github.com/spec-kit/restaurant-portal/pkg/util/errorutil"
)

// SessionRevoker voids outstanding refresh tokens of an identity.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, identityID string) error
}

// AdminService implements the superadmin review and suspension workflow. It is the only
// writer of restaurant statuses.
type AdminService struct {
	restaurants repository.RestaurantRepository
	users       repository.UserRepository
	sessions    SessionRevoker
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// AdminDependencies encapsulates collaborators of the admin service.
type AdminDependencies struct {
	RestaurantRepo repository.RestaurantRepository
	UserRepo       repository.UserRepository
	Sessions       SessionRevoker
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// RestaurantListFilters define listing parameters.
type RestaurantListFilters struct {
	VerificationStatus *domain.VerificationStatus
	AccountStatus      *domain.AccountStatus
	Limit              int
	Offset             int
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		restaurants: deps.RestaurantRepo,
		users:       deps.UserRepo,
		sessions:    deps.Sessions,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

func requireSuperadmin(actor domain.Identity) error {
	if actor.Role != domain.RoleSuperadmin {
		return apperrors.NewForbidden("superadmin role required")
	}
	return nil
}

// ListRestaurants returns restaurants matching the filters.
func (s *AdminService) ListRestaurants(ctx context.Context, actor domain.Identity, filters RestaurantListFilters) ([]domain.RestaurantAccount, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	list, err := s.restaurants.List(ctx, repository.RestaurantFilter{
		VerificationStatus: filters.VerificationStatus,
		AccountStatus:      filters.AccountStatus,
		Limit:              filters.Limit,
		Offset:             filters.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// GetRestaurant loads one restaurant.
func (s *AdminService) GetRestaurant(ctx context.Context, actor domain.Identity, id string) (*domain.RestaurantAccount, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	account, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("restaurant", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// ApproveVerification moves a pending restaurant to approved.
func (s *AdminService) ApproveVerification(ctx context.Context, actor domain.Identity, id string) (*domain.RestaurantAccount, error) {
	return s.review(ctx, actor, id, domain.VerificationApproved, "")
}

// RejectVerification moves a pending restaurant to rejected.
func (s *AdminService) RejectVerification(ctx context.Context, actor domain.Identity, id, reason string) (*domain.RestaurantAccount, error) {
	return s.review(ctx, actor, id, domain.VerificationRejected, reason)
}

func (s *AdminService) review(ctx context.Context, actor domain.Identity, id string, to domain.VerificationStatus, reason string) (*domain.RestaurantAccount, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	account, err := s.restaurants.TransitionVerification(ctx, id, domain.VerificationPending, to)
	if err != nil {
		return nil, s.transitionError(ctx, err, id, "verification_status", string(domain.VerificationPending))
	}

	s.publish(ctx, events.Event{
		Type:         events.EventVerificationReviewed,
		RestaurantID: account.ID,
		Actor:        events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.StatusChangedPayload{
			Field:  "verification_status",
			From:   string(domain.VerificationPending),
			To:     string(to),
			Reason: reason,
		},
	})
	return account, nil
}

// Suspend disables an active restaurant and revokes the refresh tokens of all its
// identities so the suspension also reaches devices that are still signed in.
func (s *AdminService) Suspend(ctx context.Context, actor domain.Identity, id, reason string) (*domain.RestaurantAccount, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	account, err := s.restaurants.TransitionAccount(ctx, id, domain.AccountActive, domain.AccountSuspended)
	if err != nil {
		return nil, s.transitionError(ctx, err, id, "account_status", string(domain.AccountActive))
	}

	s.revokeRestaurantSessions(ctx, account.ID)
	s.publish(ctx, events.Event{
		Type:         events.EventAccountSuspended,
		RestaurantID: account.ID,
		Actor:        events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.StatusChangedPayload{
			Field:  "account_status",
			From:   string(domain.AccountActive),
			To:     string(domain.AccountSuspended),
			Reason: reason,
		},
	})
	return account, nil
}

// Reinstate re-enables a suspended restaurant.
func (s *AdminService) Reinstate(ctx context.Context, actor domain.Identity, id string) (*domain.RestaurantAccount, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	account, err := s.restaurants.TransitionAccount(ctx, id, domain.AccountSuspended, domain.AccountActive)
	if err != nil {
		return nil, s.transitionError(ctx, err, id, "account_status", string(domain.AccountSuspended))
	}

	s.publish(ctx, events.Event{
		Type:         events.EventAccountReinstated,
		RestaurantID: account.ID,
		Actor:        events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.StatusChangedPayload{
			Field: "account_status",
			From:  string(domain.AccountSuspended),
			To:    string(domain.AccountActive),
		},
	})
	return account, nil
}

// transitionError tells a missing restaurant apart from one in the wrong state.
func (s *AdminService) transitionError(ctx context.Context, err error, id, field, expected string) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	current, getErr := s.restaurants.GetByID(ctx, id)
	if getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return apperrors.NewNotFound("restaurant", map[string]any{"id": id})
		}
		return apperrors.MapError(getErr)
	}
	details := map[string]any{
		"field":               field,
		"expected":            expected,
		"verification_status": current.VerificationStatus,
		"account_status":      current.AccountStatus,
	}
	return apperrors.NewConflict("restaurant is not in the required state", details)
}

func (s *AdminService) revokeRestaurantSessions(ctx context.Context, restaurantID string) {
	if s.sessions == nil || s.users == nil {
		return
	}
	users, err := s.users.ListByRestaurant(ctx, restaurantID, nil)
	if err != nil {
		s.logger.Error("list restaurant identities for revocation", zap.String("restaurant_id", restaurantID), zap.Error(err))
		return
	}
	for _, user := range users {
		if err := s.sessions.RevokeSessions(ctx, user.ID); err != nil {
			s.logger.Error("revoke sessions", zap.String("identity_id", user.ID), zap.Error(err))
		}
	}
}

func (s *AdminService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}
