package services

import "testing"

// The ledger dedupes on these keys, so their shape is load-bearing: two claims
// of the same daily reward must collide, two separate draws never may.
func TestActionKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"check-in is day scoped", ActionCheckIn("2026-08-28"), "checkin:2026-08-28"},
		{"ad reward is day and slot scoped", ActionAdReward("2026-08-28", 4), "ad:2026-08-28:4"},
		{"challenge is day scoped", ActionChallenge("2026-08-28"), "challenge:2026-08-28"},
		{"inviter credit is invitee scoped", ActionReferralInviter(42), "referral:invited:42"},
		{"invitee credit is account-unique", ActionReferralInvitee(), "referral:redeemed"},
		{"signing bonus is account-unique", ActionSigningBonus(), "signing-bonus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDrawActionKeysNeverCollide(t *testing.T) {
	if ActionSpin("a") == ActionSpin("b") {
		t.Error("spin keys collide across draws")
	}
	if ActionSpin("a") == ActionScratch("a") {
		t.Error("spin and scratch keys collide on the same draw id")
	}
}
