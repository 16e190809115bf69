package assetkey

import (
	"errors"
	"testing"

	"clipvault/internal/services"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		reference string
		want      string
		wantErr   bool
	}{
		{"reel url", "https://www.instagram.com/reel/DEF456", "DEF456", false},
		{"post url", "https://www.instagram.com/p/ABC123", "ABC123", false},
		{"query string stripped", "https://www.instagram.com/reel/DEF456?igsh=token", "DEF456", false},
		{"bare segment", "abc123", "abc123", false},
		{"trailing slash", "https://www.instagram.com/reel/DEF456/", "", true},
		{"only query after slash", "https://example.com/?x=1", "", true},
		{"empty", "", "", true},
		{"whitespace", "   ", "", true},
		{"scheme only", "https://", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.reference)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) = %q, want error", tc.reference, got)
				}
				if !errors.Is(err, services.ErrInvalidReference) {
					t.Errorf("want ErrInvalidReference, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tc.reference, err)
			}
			if got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.reference, got, tc.want)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	a, err := Resolve("https://www.instagram.com/reel/SAME01")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, err := Resolve("https://instagram.com/reel/SAME01?utm_source=share")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a != b {
		t.Errorf("references denoting the same media resolved differently: %q vs %q", a, b)
	}
}

func TestObjectName(t *testing.T) {
	if got := ObjectName("abc123"); got != "abc123.mp4" {
		t.Errorf("ObjectName = %q, want abc123.mp4", got)
	}
}
