// Package scope defines the fixed documentation whitelist.
//
// The crawler may only fetch, and the answerer may only cite, pages that
// live under one of exactly two base URL prefixes. The scope is resolved
// once from configuration at startup and is immutable afterwards; it is
// never derived from request input. Client-supplied source lists are
// validated against it and rejected wholesale on any mismatch.
package scope

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// BaseCount is the number of base prefixes a scope must contain.
const BaseCount = 2

var (
	// ErrOutsideScope indicates a requested source URL is not covered by
	// any allowed base prefix.
	ErrOutsideScope = errors.New("source is outside the allowed documentation scope")

	// ErrInvalidBase indicates a configured base prefix is not an absolute
	// http(s) URL.
	ErrInvalidBase = errors.New("invalid scope base")
)

// Scope is the immutable set of allowed base URL prefixes.
type Scope struct {
	raw   []string
	bases []*url.URL
}

// New parses the configured base prefixes into a Scope.
// Exactly BaseCount absolute http(s) URLs are required.
func New(bases []string) (*Scope, error) {
	if len(bases) != BaseCount {
		return nil, fmt.Errorf("%w: expected %d base prefixes, got %d", ErrInvalidBase, BaseCount, len(bases))
	}

	s := &Scope{
		raw:   make([]string, 0, len(bases)),
		bases: make([]*url.URL, 0, len(bases)),
	}
	for _, b := range bases {
		b = strings.TrimSpace(b)
		u, err := url.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidBase, b, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBase, b)
		}
		s.raw = append(s.raw, b)
		s.bases = append(s.bases, u)
	}
	return s, nil
}

// Bases returns the configured base prefixes in order.
// These double as the crawler's seed URLs.
func (s *Scope) Bases() []string {
	out := make([]string, len(s.raw))
	copy(out, s.raw)
	return out
}

// Match reports which base prefix covers rawURL, if any.
// A URL matches a base when scheme and host are identical and its path
// begins with the base path.
func (s *Scope) Match(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	for i, base := range s.bases {
		if u.Scheme != base.Scheme || u.Host != base.Host {
			continue
		}
		if strings.HasPrefix(u.Path, base.Path) {
			return s.raw[i], true
		}
	}
	return "", false
}

// Allows reports whether rawURL falls under any allowed base.
func (s *Scope) Allows(rawURL string) bool {
	_, ok := s.Match(rawURL)
	return ok
}

// Validate checks a client-supplied source list against the scope.
// Any entry outside the whitelist fails the whole list closed.
func (s *Scope) Validate(sources []string) error {
	for _, src := range sources {
		if !s.Allows(src) {
			return fmt.Errorf("%w: %s", ErrOutsideScope, src)
		}
	}
	return nil
}
