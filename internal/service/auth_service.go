package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/config"
	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/events"
	"github.com/spec-kit/restaurant-portal/internal/repository"
	apperrors "github.com/spec-kit/restaurant-portal/pkg/util/errorutil"
)

var (
	ErrInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")
	ErrInvalidSession     = apperrors.NewUnauthorized("session is no longer valid")
	ErrEmailTaken         = apperrors.NewConflict("email already registered", nil)
)

// SignupInput carries a new restaurant and its owner login.
type SignupInput struct {
	RestaurantName string
	OwnerName      string
	Email          string
	Password       string
}

// SignupResult is returned after a successful restaurant signup.
type SignupResult struct {
	User    *domain.User
	Account *domain.RestaurantAccount
	Session *domain.Session
}

// AuthService coordinates signup, login and session refresh.
type AuthService struct {
	users       repository.UserRepository
	restaurants repository.RestaurantRepository
	revocations repository.RevocationStore
	dispatcher  events.Dispatcher
	tokenMgr    *auth.TokenManager
	logger      *zap.Logger
	bcryptCost  int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	RestaurantRepo repository.RestaurantRepository
	Revocations    repository.RevocationStore
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	// TokenManager overrides the manager built from config; tests inject a fixed clock here.
	TokenManager *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		restaurants: deps.RestaurantRepo,
		revocations: deps.Revocations,
		dispatcher:  deps.Dispatcher,
		tokenMgr:    tokens,
		logger:      logger,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// RegisterRestaurant creates a pending, active restaurant with its owner identity and
// opens a session for the owner.
func (s *AuthService) RegisterRestaurant(ctx context.Context, in SignupInput) (*SignupResult, error) {
	in.Email = normalizeEmail(in.Email)
	if strings.TrimSpace(in.RestaurantName) == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("restaurant_name, email and password required", nil)
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"min_length": auth.MinPasswordLength})
		}
		return nil, apperrors.NewInternalError(err)
	}

	account := domain.NewRestaurantAccount(strings.TrimSpace(in.RestaurantName))
	ownerName := strings.TrimSpace(in.OwnerName)
	if ownerName == "" {
		ownerName = account.Name
	}
	user := &domain.User{
		Name:         ownerName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleRestaurant,
	}
	// A concurrent signup can pass ensureEmailFree and still lose on the unique index.
	if err := s.restaurants.CreateWithOwner(ctx, account, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, apperrors.MapError(err)
	}

	session, err := s.tokenMgr.Issue(user.Identity())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type:         events.EventRestaurantRegistered,
		RestaurantID: account.ID,
		Actor:        events.Actor{ID: user.ID, Role: user.Role},
		Payload:      events.RestaurantRegisteredPayload{Name: account.Name, OwnerEmail: user.Email},
	})

	return &SignupResult{User: user, Account: account, Session: session}, nil
}

// Login authenticates an identity through the login page of its role. A correct
// password for a different role is reported exactly like a wrong password.
func (s *AuthService) Login(ctx context.Context, role domain.Role, email, password string) (*domain.User, *domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.tokenMgr.Issue(user.Identity())
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// Refresh mints a new access token from a refresh token. The identity is reloaded so
// role changes apply, and tokens issued before a revocation marker are refused.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, domain.Identity, error) {
	if refreshToken == "" {
		return "", time.Time{}, domain.Identity{}, ErrInvalidSession
	}
	claims, err := s.tokenMgr.ParseRefresh(refreshToken)
	if err != nil {
		return "", time.Time{}, domain.Identity{}, ErrInvalidSession
	}

	if s.revocations != nil {
		revokedBefore, ok, err := s.revocations.RevokedBefore(ctx, claims.Subject)
		if err != nil {
			s.logger.Error("revocation lookup failed", zap.String("identity_id", claims.Subject), zap.Error(err))
			return "", time.Time{}, domain.Identity{}, apperrors.NewDomainError("SESSION_CHECK_UNAVAILABLE", "session check unavailable", http.StatusServiceUnavailable, nil)
		}
		if issued := claims.IssuedAtTime(); ok && (issued.IsZero() || !issued.After(revokedBefore)) {
			return "", time.Time{}, domain.Identity{}, ErrInvalidSession
		}
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, domain.Identity{}, ErrInvalidSession
		}
		return "", time.Time{}, domain.Identity{}, apperrors.MapError(err)
	}

	identity := user.Identity()
	token, exp, err := s.tokenMgr.IssueAccess(identity)
	if err != nil {
		return "", time.Time{}, domain.Identity{}, apperrors.NewInternalError(err)
	}
	return token, exp, identity, nil
}

// RevokeSessions voids every refresh token issued to the identity up to and including
// the current second.
func (s *AuthService) RevokeSessions(ctx context.Context, identityID string) error {
	if s.revocations == nil {
		return nil
	}
	return s.revocations.RevokeBefore(ctx, identityID, s.tokenMgr.Now(), s.tokenMgr.RefreshTTL())
}

// EnsureSuperadmin provisions the configured superadmin login if it does not exist.
func (s *AuthService) EnsureSuperadmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleSuperadmin {
			return false, apperrors.NewConflict("superadmin email belongs to another role", map[string]any{"role": existing.Role})
		}
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	user := &domain.User{
		Name:         "Superadmin",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSuperadmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
