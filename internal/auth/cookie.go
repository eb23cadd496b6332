package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/valyala/fasthttp"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieTransport writes and removes session cookies. Attach and Clear share one
// attribute builder because browsers only delete a cookie whose name, domain and path
// match the stored entry.
type CookieTransport struct {
	production bool
	devDomain  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookieTransport builds a transport. TTLs must match the token manager's.
func NewCookieTransport(production bool, devDomain string, accessTTL, refreshTTL time.Duration) *CookieTransport {
	return &CookieTransport{
		production: production,
		devDomain:  devDomain,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Attach sets both session cookies on the response.
func (t *CookieTransport) Attach(c *fiber.Ctx, session *domain.Session) {
	c.Cookie(t.cookie(AccessTokenCookie, session.AccessToken, t.accessTTL))
	c.Cookie(t.cookie(RefreshTokenCookie, session.RefreshToken, t.refreshTTL))
}

// AttachAccess replaces only the access cookie.
func (t *CookieTransport) AttachAccess(c *fiber.Ctx, accessToken string) {
	c.Cookie(t.cookie(AccessTokenCookie, accessToken, t.accessTTL))
}

// Clear expires both session cookies immediately.
func (t *CookieTransport) Clear(c *fiber.Ctx) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		ck := t.cookie(name, "", 0)
		ck.MaxAge = 0
		ck.Expires = fasthttp.CookieExpireDelete
		c.Cookie(ck)
	}
}

// AccessToken reads the access token from the request cookie.
func (t *CookieTransport) AccessToken(c *fiber.Ctx) string {
	return c.Cookies(AccessTokenCookie)
}

// RefreshToken reads the refresh token from the request cookie.
func (t *CookieTransport) RefreshToken(c *fiber.Ctx) string {
	return c.Cookies(RefreshTokenCookie)
}

func (t *CookieTransport) cookie(name, value string, ttl time.Duration) *fiber.Cookie {
	ck := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
	}
	if ttl > 0 {
		ck.MaxAge = int(ttl / time.Second)
		ck.Expires = time.Now().Add(ttl)
	}
	if t.production {
		ck.Secure = true
		ck.SameSite = fiber.CookieSameSiteStrictMode
	} else {
		ck.SameSite = fiber.CookieSameSiteLaxMode
		ck.Domain = t.devDomain
	}
	return ck
}

// EncryptionMiddleware authenticates and encrypts every cookie with the process-wide key.
// Tampered or foreign cookies decrypt to an empty value and read as absent.
func EncryptionMiddleware(key string) fiber.Handler {
	return encryptcookie.New(encryptcookie.Config{Key: key})
}

// GenerateCookieKey returns a random key suitable for EncryptionMiddleware.
func GenerateCookieKey() string {
	return encryptcookie.GenerateKey()
}
