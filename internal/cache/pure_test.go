package cache

import (
	"testing"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"different last octet", "10.0.0.1", "10.0.0.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash1 := hashIP(tt.ip1)
			hash2 := hashIP(tt.ip2)

			if hash1 == hash2 {
				t.Errorf("Different IPs should produce different hashes: %q and %q both produced %s", tt.ip1, tt.ip2, hash1)
			}
		})
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tag       string
		primary   string
		secondary []string
		want      string
	}{
		{"primary only", "timeline", "Go", nil, "timeline_Go"},
		{"with secondary", "risk", "Alice", []string{"Go"}, "risk_Alice_Go"},
		{"empty secondary omitted", "risk", "Alice", []string{""}, "risk_Alice"},
		{"spaces kept", "editors", "Go (programming language)", []string{"10"}, "editors_Go (programming language)_10"},
		{"underscore in primary escaped", "risk", "Foo_Bar", nil, "risk_Foo%5FBar"},
		{"underscore in secondary escaped", "risk", "Foo", []string{"Bar_Baz"}, "risk_Foo_Bar%5FBaz"},
		{"percent escaped", "timeline", "100%_pure", nil, "timeline_100%25%5Fpure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Key(tt.tag, tt.primary, tt.secondary...); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_SeparatorInParameters(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{Key("risk", "Foo_Bar"), Key("risk", "Foo", "Bar")},
		{Key("risk", "A_B", "C"), Key("risk", "A", "B_C")},
		{Key("timeline", "%5F"), Key("timeline", "_")},
	}
	for _, p := range pairs {
		if p[0] == p[1] {
			t.Errorf("distinct parameters share key %q", p[0])
		}
	}
}
