package domain

import "testing"

func TestResolveDestinationTable(t *testing.T) {
	tests := []struct {
		account      AccountStatus
		verification VerificationStatus
		want         Destination
	}{
		{AccountActive, VerificationPending, DestinationVerificationPending},
		{AccountActive, VerificationApproved, DestinationDashboard},
		{AccountActive, VerificationRejected, DestinationVerificationRejected},
		{AccountActive, VerificationUnknown, DestinationAccessDenied},
		{AccountActive, VerificationStatus("aproved"), DestinationAccessDenied},
		{AccountActive, VerificationStatus(""), DestinationAccessDenied},
		{AccountSuspended, VerificationPending, DestinationAccountSuspended},
		{AccountSuspended, VerificationApproved, DestinationAccountSuspended},
		{AccountSuspended, VerificationRejected, DestinationAccountSuspended},
		{AccountSuspended, VerificationUnknown, DestinationAccountSuspended},
		{AccountUnknown, VerificationApproved, DestinationAccessDenied},
		{AccountStatus(""), VerificationApproved, DestinationAccessDenied},
	}

	for _, tt := range tests {
		t.Run(string(tt.account)+"/"+string(tt.verification), func(t *testing.T) {
			acc := &RestaurantAccount{AccountStatus: tt.account, VerificationStatus: tt.verification}
			got := ResolveDestination(acc)
			if got != tt.want {
				t.Errorf("ResolveDestination() = %s, want %s", got, tt.want)
			}
			if again := ResolveDestination(acc); again != got {
				t.Errorf("second resolve = %s, first = %s", again, got)
			}
		})
	}
}

func TestResolveDestinationSuspendedApprovedNeverDashboard(t *testing.T) {
	acc := &RestaurantAccount{AccountStatus: AccountSuspended, VerificationStatus: VerificationApproved}
	if got := ResolveDestination(acc); got != DestinationAccountSuspended {
		t.Fatalf("ResolveDestination() = %s, want %s", got, DestinationAccountSuspended)
	}
}

func TestResolveDestinationNilAccount(t *testing.T) {
	if got := ResolveDestination(nil); got != DestinationAccessDenied {
		t.Fatalf("ResolveDestination(nil) = %s, want %s", got, DestinationAccessDenied)
	}
}

func TestNewRestaurantAccountStartsPending(t *testing.T) {
	acc := NewRestaurantAccount("Trattoria")
	if acc.VerificationStatus != VerificationPending || acc.AccountStatus != AccountActive {
		t.Fatalf("new account = %+v", acc)
	}
	if got := ResolveDestination(acc); got != DestinationVerificationPending {
		t.Fatalf("new account resolves to %s", got)
	}
}

func TestParseStatuses(t *testing.T) {
	if got := ParseVerificationStatus(" Approved "); got != VerificationApproved {
		t.Errorf("ParseVerificationStatus = %s", got)
	}
	if got := ParseVerificationStatus("archived"); got != VerificationUnknown {
		t.Errorf("ParseVerificationStatus(archived) = %s", got)
	}
	if got := ParseAccountStatus("SUSPENDED"); got != AccountSuspended {
		t.Errorf("ParseAccountStatus = %s", got)
	}
	if got := ParseAccountStatus(""); got != AccountUnknown {
		t.Errorf("ParseAccountStatus(\"\") = %s", got)
	}
}
