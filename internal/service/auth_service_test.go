package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/events"
	apperrors "github.com/spec-kit/restaurant-portal/pkg/util/errorutil"
)

type authFixture struct {
	users       *fakeUserRepo
	restaurants *fakeRestaurantRepo
	revocations *fakeRevocations
	dispatcher  *recordingDispatcher
	clock       *testClock
	service     *AuthService
}

func setupAuthService(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:       newFakeUserRepo(),
		restaurants: newFakeRestaurantRepo(),
		revocations: newFakeRevocations(),
		dispatcher:  &recordingDispatcher{},
		clock:       &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.restaurants.users = f.users
	cfg := testConfig()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, auth.WithClock(f.clock.Now))
	f.service = NewAuthService(cfg, AuthDependencies{
		UserRepo:       f.users,
		RestaurantRepo: f.restaurants,
		Revocations:    f.revocations,
		Dispatcher:     f.dispatcher,
		TokenManager:   tokens,
	})
	return f
}

func (f *authFixture) signup(t *testing.T, email string) *SignupResult {
	t.Helper()
	result, err := f.service.RegisterRestaurant(context.Background(), SignupInput{
		RestaurantName: "Trattoria",
		OwnerName:      "Maria",
		Email:          email,
		Password:       "correct-horse",
	})
	if err != nil {
		t.Fatalf("RegisterRestaurant() error = %v", err)
	}
	return result
}

func statusOf(err error) int {
	if err == nil {
		return 0
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestRegisterRestaurantStartsPending(t *testing.T) {
	f := setupAuthService(t)
	result := f.signup(t, " Owner@Example.com ")

	if result.Account.VerificationStatus != domain.VerificationPending || result.Account.AccountStatus != domain.AccountActive {
		t.Fatalf("account = %+v", result.Account)
	}
	if domain.ResolveDestination(result.Account) != domain.DestinationVerificationPending {
		t.Errorf("new restaurant should resolve to the pending page")
	}
	if result.User.Email != "owner@example.com" || result.User.Role != domain.RoleRestaurant {
		t.Errorf("user = %+v", result.User)
	}
	if result.User.RestaurantID == nil || *result.User.RestaurantID != result.Account.ID {
		t.Errorf("owner not bound to restaurant")
	}

	identity, err := f.service.TokenManager().VerifyAccess(result.Session.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if identity.RestaurantID != result.Account.ID {
		t.Errorf("token restaurant = %q", identity.RestaurantID)
	}

	if got := f.dispatcher.types(); len(got) != 1 || got[0] != events.EventRestaurantRegistered {
		t.Errorf("events = %v", got)
	}
}

func TestRegisterRestaurantValidation(t *testing.T) {
	f := setupAuthService(t)
	f.signup(t, "taken@example.com")

	tests := []struct {
		name   string
		in     SignupInput
		status int
	}{
		{name: "missing name", in: SignupInput{Email: "a@example.com", Password: "long-enough"}, status: http.StatusBadRequest},
		{name: "short password", in: SignupInput{RestaurantName: "x", Email: "b@example.com", Password: "short"}, status: http.StatusBadRequest},
		{name: "duplicate email", in: SignupInput{RestaurantName: "x", Email: "TAKEN@example.com", Password: "long-enough"}, status: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RegisterRestaurant(context.Background(), tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := statusOf(err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestRegisterRestaurantLosingEmailRace(t *testing.T) {
	f := setupAuthService(t)
	// Another signup inserted the same email between the pre-check and the insert.
	f.users.createErr = fmt.Errorf("insert owner: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := f.service.RegisterRestaurant(context.Background(), SignupInput{
		RestaurantName: "Trattoria",
		Email:          "race@example.com",
		Password:       "correct-horse",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if got := statusOf(err); got != http.StatusConflict {
		t.Errorf("status = %d, want 409", got)
	}
	if n := f.restaurants.count(); n != 0 {
		t.Errorf("restaurants = %d, want no orphaned account", n)
	}
	if got := f.dispatcher.types(); len(got) != 0 {
		t.Errorf("events = %v", got)
	}
}

func TestLoginIsRoleSpecific(t *testing.T) {
	f := setupAuthService(t)
	f.signup(t, "owner@example.com")
	ctx := context.Background()

	user, session, err := f.service.Login(ctx, domain.RoleRestaurant, "owner@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Role != domain.RoleRestaurant || session.AccessToken == "" {
		t.Errorf("login result = %+v %+v", user, session)
	}

	tests := []struct {
		name     string
		role     domain.Role
		email    string
		password string
	}{
		{name: "wrong password", role: domain.RoleRestaurant, email: "owner@example.com", password: "nope-nope"},
		{name: "unknown email", role: domain.RoleRestaurant, email: "ghost@example.com", password: "correct-horse"},
		{name: "staff login page", role: domain.RoleStaff, email: "owner@example.com", password: "correct-horse"},
		{name: "superadmin login page", role: domain.RoleSuperadmin, email: "owner@example.com", password: "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.service.Login(ctx, tt.role, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	f := setupAuthService(t)
	result := f.signup(t, "owner@example.com")
	f.clock.Advance(13 * time.Hour)

	if _, err := f.service.TokenManager().VerifyAccess(result.Session.AccessToken); !errors.Is(err, auth.ErrExpired) {
		t.Fatalf("original access token should be expired, got %v", err)
	}

	token, exp, identity, err := f.service.Refresh(context.Background(), result.Session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if identity.ID != result.User.ID || !exp.Equal(f.clock.Now().Add(12*time.Hour)) {
		t.Errorf("identity=%+v exp=%v", identity, exp)
	}
	if _, err := f.service.TokenManager().VerifyAccess(token); err != nil {
		t.Errorf("refreshed token invalid: %v", err)
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	f := setupAuthService(t)
	result := f.signup(t, "owner@example.com")

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "abc.def.ghi",
		"access token": result.Session.AccessToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := f.service.Refresh(context.Background(), token)
			if !errors.Is(err, ErrInvalidSession) {
				t.Fatalf("err = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestRefreshHonoursRevocation(t *testing.T) {
	f := setupAuthService(t)
	result := f.signup(t, "owner@example.com")
	ctx := context.Background()

	f.clock.Advance(time.Minute)
	if err := f.service.RevokeSessions(ctx, result.User.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := f.service.Refresh(ctx, result.Session.RefreshToken); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("revoked refresh err = %v", err)
	}

	f.clock.Advance(time.Second)
	_, session, err := f.service.Login(ctx, domain.RoleRestaurant, "owner@example.com", "correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := f.service.Refresh(ctx, session.RefreshToken); err != nil {
		t.Fatalf("session issued after revocation should refresh: %v", err)
	}
}

func TestRefreshAfterRevocationWithinSameSecond(t *testing.T) {
	f := setupAuthService(t)
	result := f.signup(t, "owner@example.com")
	ctx := context.Background()

	f.clock.Advance(500 * time.Millisecond)
	if err := f.service.RevokeSessions(ctx, result.User.ID); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(100 * time.Millisecond)
	_, session, err := f.service.Login(ctx, domain.RoleRestaurant, "owner@example.com", "correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := f.service.Refresh(ctx, session.RefreshToken); err != nil {
		t.Fatalf("login 100ms after revocation should refresh: %v", err)
	}
	if _, _, _, err := f.service.Refresh(ctx, result.Session.RefreshToken); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("token issued before revocation err = %v", err)
	}
}

func TestRefreshRevocationLookupFailure(t *testing.T) {
	f := setupAuthService(t)
	result := f.signup(t, "owner@example.com")
	f.revocations.err = errors.New("redis down")

	_, _, _, err := f.service.Refresh(context.Background(), result.Session.RefreshToken)
	if got := statusOf(err); got != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", got)
	}
}

func TestEnsureSuperadmin(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	created, err := f.service.EnsureSuperadmin(ctx, "root@example.com", "super-secret")
	if err != nil || !created {
		t.Fatalf("first EnsureSuperadmin = %v, %v", created, err)
	}
	created, err = f.service.EnsureSuperadmin(ctx, "ROOT@example.com", "super-secret")
	if err != nil || created {
		t.Fatalf("second EnsureSuperadmin = %v, %v", created, err)
	}
	if created, err := f.service.EnsureSuperadmin(ctx, "", ""); err != nil || created {
		t.Fatalf("unconfigured EnsureSuperadmin = %v, %v", created, err)
	}

	user, _, err := f.service.Login(ctx, domain.RoleSuperadmin, "root@example.com", "super-secret")
	if err != nil {
		t.Fatalf("superadmin login: %v", err)
	}
	if user.RestaurantID != nil {
		t.Errorf("superadmin should not belong to a restaurant")
	}

	f.signup(t, "owner@example.com")
	if _, err := f.service.EnsureSuperadmin(ctx, "owner@example.com", "super-secret"); statusOf(err) != http.StatusConflict {
		t.Errorf("EnsureSuperadmin over a restaurant login err = %v", err)
	}
}
