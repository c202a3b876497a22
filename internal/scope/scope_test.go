package scope

import (
	"errors"
	"testing"
)

var testBases = []string{
	"https://docs.example.com/circulation-user-manual",
	"https://docs.example.com/advertising-user-manual",
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bases   []string
		wantErr error
	}{
		{name: "two valid bases", bases: testBases},
		{name: "no bases", bases: nil, wantErr: ErrInvalidBase},
		{name: "one base", bases: testBases[:1], wantErr: ErrInvalidBase},
		{name: "three bases", bases: append(append([]string{}, testBases...), "https://docs.example.com/extra"), wantErr: ErrInvalidBase},
		{name: "relative URL", bases: []string{"/circulation", "/advertising"}, wantErr: ErrInvalidBase},
		{name: "non-http scheme", bases: []string{"ftp://docs.example.com/a", testBases[1]}, wantErr: ErrInvalidBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.bases)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New(%v) error = %v, want %v", tt.bases, err, tt.wantErr)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	s, err := New(testBases)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name     string
		url      string
		wantBase string
		wantOK   bool
	}{
		{
			name:     "base itself",
			url:      "https://docs.example.com/circulation-user-manual",
			wantBase: testBases[0],
			wantOK:   true,
		},
		{
			name:     "page under first base",
			url:      "https://docs.example.com/circulation-user-manual/renewals",
			wantBase: testBases[0],
			wantOK:   true,
		},
		{
			name:     "page under second base",
			url:      "https://docs.example.com/advertising-user-manual/orders/create",
			wantBase: testBases[1],
			wantOK:   true,
		},
		{name: "sibling path outside both bases", url: "https://docs.example.com/billing-user-manual/intro"},
		{name: "different host", url: "https://evil.example.com/circulation-user-manual/renewals"},
		{name: "different scheme", url: "http://docs.example.com/circulation-user-manual/renewals"},
		{name: "unparseable", url: "://not-a-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base, ok := s.Match(tt.url)
			if ok != tt.wantOK || base != tt.wantBase {
				t.Errorf("Match(%q) = (%q, %v), want (%q, %v)", tt.url, base, ok, tt.wantBase, tt.wantOK)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s, err := New(testBases)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Run("empty list passes", func(t *testing.T) {
		t.Parallel()

		if err := s.Validate(nil); err != nil {
			t.Errorf("Validate(nil) = %v, want nil", err)
		}
	})

	t.Run("in-scope sources pass", func(t *testing.T) {
		t.Parallel()

		sources := []string{
			"https://docs.example.com/circulation-user-manual/renewals",
			"https://docs.example.com/advertising-user-manual",
		}
		if err := s.Validate(sources); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("one bad source fails the whole list", func(t *testing.T) {
		t.Parallel()

		sources := []string{
			"https://docs.example.com/circulation-user-manual/renewals",
			"https://other.example.com/manual",
		}
		if err := s.Validate(sources); !errors.Is(err, ErrOutsideScope) {
			t.Errorf("Validate() = %v, want ErrOutsideScope", err)
		}
	})
}

func TestBases(t *testing.T) {
	t.Parallel()

	s, err := New(testBases)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := s.Bases()
	if len(got) != BaseCount {
		t.Fatalf("Bases() returned %d entries, want %d", len(got), BaseCount)
	}
	for i, b := range got {
		if b != testBases[i] {
			t.Errorf("Bases()[%d] = %q, want %q", i, b, testBases[i])
		}
	}

	// Mutating the returned slice must not affect the scope.
	got[0] = "https://tampered.example.com"
	if again := s.Bases(); again[0] != testBases[0] {
		t.Errorf("Bases() after tamper = %q, want %q", again[0], testBases[0])
	}
}
