package services

import (
	"strings"
	"testing"
)

func TestRandomReferralCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := randomReferralCode(REFERRAL_CODE_LENGTH)
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != REFERRAL_CODE_LENGTH {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), REFERRAL_CODE_LENGTH)
		}
		for _, r := range code {
			if !strings.ContainsRune(referralCodeAlphabet, r) {
				t.Fatalf("code %q uses %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}

	// 50 draws from a 32^n space virtually never collide into one value
	if len(seen) < 2 {
		t.Error("codes are not random")
	}
}
