package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/restaurant-portal/internal/config"
	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/events"
	"github.com/spec-kit/restaurant-portal/internal/repository"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	nextID    int
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	copied := *user
	r.byID[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByRestaurant(_ context.Context, restaurantID string, role *domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.byID {
		if user.RestaurantID == nil || *user.RestaurantID != restaurantID {
			continue
		}
		if role != nil && user.Role != *role {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

type fakeRestaurantRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.RestaurantAccount
	nextID int
	users  *fakeUserRepo
}

func newFakeRestaurantRepo() *fakeRestaurantRepo {
	return &fakeRestaurantRepo{byID: map[string]*domain.RestaurantAccount{}}
}

// CreateWithOwner keeps the restaurant only when the owner insert succeeds.
func (r *fakeRestaurantRepo) CreateWithOwner(ctx context.Context, account *domain.RestaurantAccount, owner *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("rest-%d", r.nextID+1)
	owner.RestaurantID = &id
	if r.users != nil {
		if err := r.users.Create(ctx, owner); err != nil {
			owner.RestaurantID = nil
			return err
		}
	}
	r.nextID++
	account.ID = id
	copied := *account
	r.byID[account.ID] = &copied
	return nil
}

func (r *fakeRestaurantRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *fakeRestaurantRepo) put(id string, v domain.VerificationStatus, a domain.AccountStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = &domain.RestaurantAccount{ID: id, Name: "Bistro " + id, VerificationStatus: v, AccountStatus: a}
}

func (r *fakeRestaurantRepo) GetByID(_ context.Context, id string) (*domain.RestaurantAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (r *fakeRestaurantRepo) List(_ context.Context, filter repository.RestaurantFilter) ([]domain.RestaurantAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RestaurantAccount
	for _, account := range r.byID {
		if filter.VerificationStatus != nil && account.VerificationStatus != *filter.VerificationStatus {
			continue
		}
		if filter.AccountStatus != nil && account.AccountStatus != *filter.AccountStatus {
			continue
		}
		out = append(out, *account)
	}
	return out, nil
}

func (r *fakeRestaurantRepo) TransitionVerification(_ context.Context, id string, from, to domain.VerificationStatus) (*domain.RestaurantAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok || account.VerificationStatus != from {
		return nil, pgx.ErrNoRows
	}
	account.VerificationStatus = to
	copied := *account
	return &copied, nil
}

func (r *fakeRestaurantRepo) TransitionAccount(_ context.Context, id string, from, to domain.AccountStatus) (*domain.RestaurantAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok || account.AccountStatus != from {
		return nil, pgx.ErrNoRows
	}
	account.AccountStatus = to
	copied := *account
	return &copied, nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	markers map[string]time.Time
	err     error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{markers: map[string]time.Time{}}
}

func (f *fakeRevocations) RevokeBefore(_ context.Context, identityID string, at time.Time, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers[identityID] = at.Truncate(time.Millisecond)
	return nil
}

func (f *fakeRevocations) RevokedBefore(_ context.Context, identityID string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return time.Time{}, false, f.err
	}
	at, ok := f.markers[identityID]
	return at, ok, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "service-test-secret",
			AccessTokenTTL:  12 * time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
			BcryptCost:      4,
		},
	}
}
