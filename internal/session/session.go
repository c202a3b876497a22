// Package session keeps per-user short-term conversation history for
// free-chat mode.
//
// Sessions are keyed by a caller-supplied user identifier and bounded to
// the most recent exchange pairs; the oldest pair is evicted first so the
// retained history always alternates user/assistant. Sessions live for the
// process lifetime and are never persisted. The Store interface exists so
// an external backing store could replace the in-memory map without
// touching callers.
package session

import (
	"log/slog"
	"sync"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultUserID is used when a request carries no user identifier.
const DefaultUserID = "default"

// DefaultMaxPairs bounds retained history when no limit is configured.
const DefaultMaxPairs = 10

// Turn is a single conversation turn.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store is the conversation history behavior chat depends on.
type Store interface {
	// Append records a turn for the user and returns the current ordered
	// turn sequence after trimming.
	Append(userID, role, content string) []Turn

	// History returns the user's current ordered turn sequence.
	History(userID string) []Turn
}

// MemoryStore is the in-memory Store implementation.
// It is safe for concurrent use by multiple goroutines.
type MemoryStore struct {
	mu       sync.Mutex
	maxPairs int
	sessions map[string][]Turn
	logger   *slog.Logger
}

// NewMemoryStore creates a MemoryStore retaining at most maxPairs exchange
// pairs per user.
func NewMemoryStore(maxPairs int, logger *slog.Logger) *MemoryStore {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		maxPairs: maxPairs,
		sessions: make(map[string][]Turn),
		logger:   logger,
	}
}

// Append records a turn, creating the session on first use, then trims
// whole pairs from the front until at most maxPairs pairs remain.
func (s *MemoryStore) Append(userID, role, content string) []Turn {
	userID = normalize(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[userID], Turn{Role: role, Content: content})
	for len(turns) > 2*s.maxPairs {
		turns = turns[2:]
	}
	s.sessions[userID] = turns

	s.logger.Debug("appended turn", "user", userID, "role", role, "turns", len(turns))
	return copyTurns(turns)
}

// History returns the user's current turn sequence.
func (s *MemoryStore) History(userID string) []Turn {
	userID = normalize(userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTurns(s.sessions[userID])
}

func normalize(userID string) string {
	if userID == "" {
		return DefaultUserID
	}
	return userID
}

func copyTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
