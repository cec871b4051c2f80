package services

import (
	"errors"
	"testing"
)

func TestCheckWithdrawal(t *testing.T) {
	methods := []string{"bKash", "Nagad", "Rocket"}

	tests := []struct {
		name         string
		amount       int64
		balance      int64
		method       string
		payoutDetail string
		want         error
	}{
		{"valid request", 10000, 12000, "bKash", "01712345678", nil},
		{"method match ignores case", 10000, 12000, "nagad", "01712345678", nil},
		{"whole balance", 15000, 15000, "Rocket", "01712345678", nil},
		{"zero amount", 0, 12000, "bKash", "01712345678", ErrInvalidAmount},
		{"negative amount", -500, 12000, "bKash", "01712345678", ErrInvalidAmount},
		{"below minimum", 9999, 12000, "bKash", "01712345678", ErrBelowMinimum},
		{"blank payout detail", 10000, 12000, "bKash", "   ", ErrMissingPayoutDetail},
		{"unknown method", 10000, 12000, "PayPal", "someone@example.com", ErrUnsupportedMethod},
		{"insufficient balance", 10000, 9000, "bKash", "01712345678", ErrInsufficientBalance},
		// amount check outranks everything else in the same request
		{"bad amount reported first", 0, 0, "PayPal", "", ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkWithdrawal(tt.amount, DEFAULT_MIN_WITHDRAWAL, tt.balance, tt.method, tt.payoutDetail, methods)
			if !errors.Is(got, tt.want) {
				t.Errorf("checkWithdrawal() = %v, want %v", got, tt.want)
			}
		})
	}
}
