package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

// GuardState is the stage a request reached in the guard state machine.
type GuardState string

const (
	StateUnauthenticated       GuardState = "unauthenticated"
	StateAuthenticatedNoStatus GuardState = "authenticated_no_status"
	StateResolved              GuardState = "resolved"
)

// Reason explains a redirect.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMissingToken    Reason = "missing_token"
	ReasonInvalidToken    Reason = "invalid_token"
	ReasonExpiredToken    Reason = "expired_token"
	ReasonRoleMismatch    Reason = "role_mismatch"
	ReasonAccountNotFound Reason = "account_not_found"
	ReasonLookupFailed    Reason = "lookup_failed"
	ReasonStatusMismatch  Reason = "status_mismatch"
)

// Target describes what a route requires of the caller. An empty Page accepts any
// resolved destination; otherwise the caller must resolve to exactly that page. The
// first role decides which login page unauthenticated callers are sent to.
type Target struct {
	Roles []domain.Role
	Page  domain.Destination
}

// For builds a target for the given roles.
func For(page domain.Destination, roles ...domain.Role) Target {
	return Target{Roles: roles, Page: page}
}

func (t Target) permits(role domain.Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (t Target) loginPath() string {
	if len(t.Roles) == 0 {
		return LoginPath(domain.RoleRestaurant)
	}
	return LoginPath(t.Roles[0])
}

// Decision is the outcome of guarding one request.
type Decision struct {
	Allow       bool
	Redirect    string
	State       GuardState
	Reason      Reason
	Destination domain.Destination
	Identity    *domain.Identity
	Account     *domain.RestaurantAccount
}

// AccountSource loads restaurant accounts; missing rows are reported as pgx.ErrNoRows.
type AccountSource interface {
	GetByID(ctx context.Context, id string) (*domain.RestaurantAccount, error)
}

// Guard decides, per request, whether the caller may reach a target.
type Guard struct {
	tokens   *TokenManager
	accounts AccountSource
	logger   *zap.Logger
}

// NewGuard constructs a guard.
func NewGuard(tokens *TokenManager, accounts AccountSource, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, accounts: accounts, logger: logger}
}

// Evaluate runs the state machine. It never returns an error: every failure becomes a
// redirect. The decision depends only on the token, the current account record and the
// target, so repeated evaluation cannot bounce between pages.
func (g *Guard) Evaluate(ctx context.Context, rawToken string, target Target) Decision {
	login := target.loginPath()

	if rawToken == "" {
		return Decision{Redirect: login, State: StateUnauthenticated, Reason: ReasonMissingToken}
	}

	identity, err := g.tokens.VerifyAccess(rawToken)
	if err != nil {
		reason := ReasonInvalidToken
		if errors.Is(err, ErrExpired) {
			reason = ReasonExpiredToken
		}
		g.logger.Debug("guard rejected token", zap.String("reason", string(reason)), zap.Error(err))
		return Decision{Redirect: login, State: StateUnauthenticated, Reason: reason}
	}

	if !target.permits(identity.Role) {
		return Decision{Redirect: login, State: StateUnauthenticated, Reason: ReasonRoleMismatch}
	}

	if identity.Role == domain.RoleSuperadmin {
		return Decision{Allow: true, State: StateResolved, Identity: &identity}
	}

	// AuthenticatedNoStatus: token accepted, restaurant record not loaded yet.
	account, reason := g.loadAccount(ctx, identity)
	dest := domain.ResolveDestination(account)
	if identity.Role == domain.RoleStaff && dest != domain.DestinationDashboard {
		dest = domain.DestinationAccessDenied
	}

	decision := Decision{
		State:       StateResolved,
		Reason:      reason,
		Destination: dest,
		Identity:    &identity,
		Account:     account,
	}
	if target.Page == "" || target.Page == dest {
		decision.Allow = true
		return decision
	}

	decision.Redirect = PagePath(identity.Role, dest)
	if decision.Reason == ReasonNone {
		decision.Reason = ReasonStatusMismatch
	}
	return decision
}

func (g *Guard) loadAccount(ctx context.Context, identity domain.Identity) (*domain.RestaurantAccount, Reason) {
	if identity.RestaurantID == "" {
		return nil, ReasonAccountNotFound
	}
	account, err := g.accounts.GetByID(ctx, identity.RestaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ReasonAccountNotFound
		}
		g.logger.Error("restaurant lookup failed",
			zap.String("restaurant_id", identity.RestaurantID),
			zap.Error(err))
		return nil, ReasonLookupFailed
	}
	return account, ReasonNone
}

// LoginPath is the login page for a role.
func LoginPath(role domain.Role) string {
	switch role {
	case domain.RoleSuperadmin:
		return "/superadmin/login"
	case domain.RoleStaff:
		return "/staff/login"
	default:
		return "/login"
	}
}

// PagePath maps a destination to its route. Staff only ever see the dashboard or the
// shared access-denied page.
func PagePath(role domain.Role, dest domain.Destination) string {
	if role == domain.RoleStaff {
		if dest == domain.DestinationDashboard {
			return "/staff/dashboard"
		}
		return "/access-denied"
	}
	switch dest {
	case domain.DestinationDashboard:
		return "/restaurant/dashboard"
	case domain.DestinationVerificationPending:
		return "/restaurant/verification-pending"
	case domain.DestinationVerificationRejected:
		return "/restaurant/verification-rejected"
	case domain.DestinationAccountSuspended:
		return "/restaurant/account-suspended"
	default:
		return "/access-denied"
	}
}
