package services

import "testing"

func TestCensorUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"regular handle", "cryptofan99", "cr*****9"},
		{"three chars", "abc", "ab*****c"},
		{"two chars passes through", "ab", "ab"},
		{"empty passes through", "", ""},
		{"cyrillic name", "Алексей", "Ал*****й"},
		{"accented name", "Héloïse", "Hé*****e"},
		{"three rune name", "Лев", "Ле*****в"},
		{"two rune name passes through", "Ян", "Ян"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := censorUsername(tt.username); got != tt.want {
				t.Errorf("censorUsername(%q) = %q, want %q", tt.username, got, tt.want)
			}
		})
	}
}
