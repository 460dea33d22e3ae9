package analytics

import (
	"strings"
	"testing"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, def, want int
	}{
		{0, 10, 10},
		{-5, 10, 10},
		{3, 10, 3},
		{500, 10, MaxLimit},
		{0, 0, DefaultLimit},
	}

	for _, tt := range tests {
		if got := NormalizeLimit(tt.limit, tt.def); got != tt.want {
			t.Errorf("NormalizeLimit(%d, %d) = %d, want %d", tt.limit, tt.def, got, tt.want)
		}
	}
}

func TestValidateTitle(t *testing.T) {
	t.Parallel()

	valid := []string{"Go (programming language)", "C++", "Zürich", "AT&T"}
	for _, title := range valid {
		if err := ValidateTitle(title); err != nil {
			t.Errorf("expected %q to be valid, got %v", title, err)
		}
	}

	cases := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"too_long", strings.Repeat("a", 256)},
		{"fragment", "Go#History"},
		{"brackets", "[[Link]]"},
		{"pipe", "a|b"},
	}
	for _, tc := range cases {
		if err := ValidateTitle(tc.title); err == nil {
			t.Errorf("expected error for %s", tc.name)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"JohnDoe123", "192.168.1.1", "2001:db8::1"} {
		if err := ValidateUsername(name); err != nil {
			t.Errorf("expected %q to be valid, got %v", name, err)
		}
	}
	for _, name := range []string{"", "a/b", "x{y}"} {
		if err := ValidateUsername(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
