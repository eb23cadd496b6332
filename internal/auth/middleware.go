package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/observability"
	apperrors "github.com/spec-kit/restaurant-portal/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity    domain.Identity
	Account     *domain.RestaurantAccount
	Destination domain.Destination
}

// AuthMiddleware adapts the Guard to fiber routes.
type AuthMiddleware struct {
	guard   *Guard
	cookies *CookieTransport
	metrics *observability.Metrics
	// pagePrefix is prepended to redirect locations issued by page guards.
	pagePrefix string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(guard *Guard, cookies *CookieTransport, metrics *observability.Metrics, pagePrefix string) *AuthMiddleware {
	return &AuthMiddleware{guard: guard, cookies: cookies, metrics: metrics, pagePrefix: pagePrefix}
}

// Page guards a navigable page: callers that may not see it are redirected.
func (m *AuthMiddleware) Page(target Target) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := m.evaluate(c, target)
		if !decision.Allow {
			return c.Redirect(m.pagePrefix+decision.Redirect, http.StatusFound)
		}
		storePrincipal(c, decision)
		return c.Next()
	}
}

// API guards a JSON endpoint: denials are rendered as errors carrying the redirect.
func (m *AuthMiddleware) API(target Target) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := m.evaluate(c, target)
		if !decision.Allow {
			status := http.StatusForbidden
			if decision.State == StateUnauthenticated {
				status = http.StatusUnauthorized
			}
			return apperrors.NewRedirect(status, string(decision.Reason), decision.Redirect, string(decision.Destination))
		}
		storePrincipal(c, decision)
		return c.Next()
	}
}

func (m *AuthMiddleware) evaluate(c *fiber.Ctx, target Target) Decision {
	decision := m.guard.Evaluate(c.UserContext(), m.token(c), target)
	m.metrics.RecordDecision(string(decision.State), string(decision.Destination), decision.Allow)
	return decision
}

// token prefers the session cookie and falls back to a bearer header for API clients.
func (m *AuthMiddleware) token(c *fiber.Ctx) string {
	if tok := m.cookies.AccessToken(c); tok != "" {
		return tok
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func storePrincipal(c *fiber.Ctx, decision Decision) {
	principal := &Principal{
		Account:     decision.Account,
		Destination: decision.Destination,
	}
	if decision.Identity != nil {
		principal.Identity = *decision.Identity
	}
	c.Locals(principalKey, principal)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
