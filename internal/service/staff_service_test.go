package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/restaurant-portal/internal/domain"
	"github.com/spec-kit/restaurant-portal/internal/events"
)

func TestCreateStaffMember(t *testing.T) {
	users := newFakeUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewStaffService(testConfig(), StaffDependencies{UserRepo: users, Dispatcher: dispatcher})
	owner := domain.Identity{ID: "u-1", Role: domain.RoleRestaurant, RestaurantID: "7"}
	ctx := context.Background()

	member, err := svc.CreateStaffMember(ctx, owner, "Luca", "Luca@Example.com", "kitchen-pass")
	if err != nil {
		t.Fatalf("CreateStaffMember() error = %v", err)
	}
	if member.Role != domain.RoleStaff || member.RestaurantID == nil || *member.RestaurantID != "7" {
		t.Fatalf("member = %+v", member)
	}
	if member.Email != "luca@example.com" {
		t.Errorf("email = %q", member.Email)
	}
	if got := dispatcher.types(); len(got) != 1 || got[0] != events.EventStaffCreated {
		t.Errorf("events = %v", got)
	}

	if _, err := svc.CreateStaffMember(ctx, owner, "Dup", "luca@example.com", "kitchen-pass"); statusOf(err) != http.StatusConflict {
		t.Errorf("duplicate err = %v", err)
	}

	list, err := svc.ListStaffMembers(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != member.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestStaffManagementRequiresOwner(t *testing.T) {
	svc := NewStaffService(testConfig(), StaffDependencies{UserRepo: newFakeUserRepo()})
	staff := domain.Identity{ID: "s-1", Role: domain.RoleStaff, RestaurantID: "7"}

	if _, err := svc.CreateStaffMember(context.Background(), staff, "x", "x@example.com", "long-enough"); statusOf(err) != http.StatusForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if _, err := svc.ListStaffMembers(context.Background(), staff); statusOf(err) != http.StatusForbidden {
		t.Fatalf("list err = %v, want forbidden", err)
	}
}

func TestCreateStaffMemberDuplicateKey(t *testing.T) {
	users := newFakeUserRepo()
	users.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	svc := NewStaffService(testConfig(), StaffDependencies{UserRepo: users})
	owner := domain.Identity{ID: "u-1", Role: domain.RoleRestaurant, RestaurantID: "7"}

	_, err := svc.CreateStaffMember(context.Background(), owner, "Luca", "luca@example.com", "kitchen-pass")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if got := statusOf(err); got != http.StatusConflict {
		t.Errorf("status = %d, want 409", got)
	}
}
