package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/restaurant-portal/internal/domain"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("malformed token")
)

// TokenManager handles issuing and validating session JWTs.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager. The secret is fixed for the lifetime of the manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 12 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	tm := &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload. IssuedAtMilli repeats iat at millisecond precision,
// the resolution revocation markers are kept at.
type Claims struct {
	Role          domain.Role      `json:"role"`
	RestaurantID  string           `json:"restaurant_id,omitempty"`
	TokenKind     domain.TokenKind `json:"token_type"`
	IssuedAtMilli int64            `json:"iat_ms,omitempty"`
	jwt.RegisteredClaims
}

// IssuedAtTime is the most precise issue time the token carries, or the zero time.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAtMilli > 0 {
		return time.UnixMilli(c.IssuedAtMilli)
	}
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// Identity returns the principal embedded in the claims.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{ID: c.Subject, Role: c.Role, RestaurantID: c.RestaurantID}
}

// Now reports the manager's clock.
func (tm *TokenManager) Now() time.Time { return tm.now() }

// AccessTTL is the lifetime of access tokens and their cookie.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL is the lifetime of refresh tokens and their cookie.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// Issue signs an access and a refresh token for the identity.
func (tm *TokenManager) Issue(identity domain.Identity) (*domain.Session, error) {
	if identity.ID == "" || !identity.Role.Valid() {
		return nil, fmt.Errorf("issue session: %w", ErrMalformed)
	}

	now := tm.now()
	access, accessExp, err := tm.sign(identity, domain.TokenKindAccess, now, tm.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := tm.sign(identity, domain.TokenKindRefresh, now, tm.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.Session{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess signs only a new access token, used by the refresh flow.
func (tm *TokenManager) IssueAccess(identity domain.Identity) (string, time.Time, error) {
	if identity.ID == "" || !identity.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue access token: %w", ErrMalformed)
	}
	return tm.sign(identity, domain.TokenKindAccess, tm.now(), tm.accessTTL)
}

func (tm *TokenManager) sign(identity domain.Identity, kind domain.TokenKind, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Role:          identity.Role,
		RestaurantID:  identity.RestaurantID,
		TokenKind:     kind,
		IssuedAtMilli: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates signature and expiry and returns the raw claims.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrMalformed
	}
	return claims, nil
}

// Verify returns the identity carried by any valid session token.
func (tm *TokenManager) Verify(tokenStr string) (domain.Identity, error) {
	claims, err := tm.Parse(tokenStr)
	if err != nil {
		return domain.Identity{}, err
	}
	return claims.Identity(), nil
}

// VerifyAccess accepts only access tokens.
func (tm *TokenManager) VerifyAccess(tokenStr string) (domain.Identity, error) {
	claims, err := tm.parseKind(tokenStr, domain.TokenKindAccess)
	if err != nil {
		return domain.Identity{}, err
	}
	return claims.Identity(), nil
}

// ParseRefresh accepts only refresh tokens and returns their claims so callers can
// compare the issue time against revocation markers.
func (tm *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return tm.parseKind(tokenStr, domain.TokenKindRefresh)
}

func (tm *TokenManager) parseKind(tokenStr string, kind domain.TokenKind) (*Claims, error) {
	claims, err := tm.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenKind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrMalformed, kind)
	}
	return claims, nil
}
