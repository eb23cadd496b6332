package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/config"
	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/events"
	"github.com/spec-kit/restaurant-portal/internal/repository"
	apperrors "github.com/spec-kit/restaurant-portal/pkg/util/errorutil"
)

// StaffService lets a restaurant owner manage staff logins for their restaurant.
type StaffService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// StaffDependencies encapsulates collaborators of the staff service.
type StaffDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

func requireOwner(actor domain.Identity) error {
	if actor.Role != domain.RoleRestaurant || actor.RestaurantID == "" {
		return apperrors.NewForbidden("restaurant owner required")
	}
	return nil
}

// CreateStaffMember adds a staff login bound to the owner's restaurant.
func (s *StaffService) CreateStaffMember(ctx context.Context, owner domain.Identity, name, email, password string) (*domain.User, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"min_length": auth.MinPasswordLength})
		}
		return nil, apperrors.NewInternalError(err)
	}

	restaurantID := owner.RestaurantID
	staff := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleStaff,
		RestaurantID: &restaurantID,
	}
	if err := s.users.Create(ctx, staff); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:         events.EventStaffCreated,
		RestaurantID: restaurantID,
		Actor:        events.Actor{ID: owner.ID, Role: owner.Role},
		Payload:      events.StaffCreatedPayload{StaffID: staff.ID, Email: staff.Email},
	})
	return staff, nil
}

// ListStaffMembers returns the staff of the owner's restaurant.
func (s *StaffService) ListStaffMembers(ctx context.Context, owner domain.Identity) ([]domain.User, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	role := domain.RoleStaff
	list, err := s.users.ListByRestaurant(ctx, owner.RestaurantID, &role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}
