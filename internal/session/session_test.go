package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/navassist/docbot/internal/log"
)

func TestAppend(t *testing.T) {
	t.Parallel()

	t.Run("returns turns in order", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryStore(10, log.NewNop())
		s.Append("u1", RoleUser, "hello")
		turns := s.Append("u1", RoleAssistant, "hi there")

		if len(turns) != 2 {
			t.Fatalf("Append() returned %d turns, want 2", len(turns))
		}
		if turns[0].Role != RoleUser || turns[0].Content != "hello" {
			t.Errorf("turns[0] = %+v, want user hello", turns[0])
		}
		if turns[1].Role != RoleAssistant || turns[1].Content != "hi there" {
			t.Errorf("turns[1] = %+v, want assistant reply", turns[1])
		}
	})

	t.Run("evicts oldest pair beyond the cap", func(t *testing.T) {
		t.Parallel()

		const maxPairs = 3
		s := NewMemoryStore(maxPairs, log.NewNop())

		for i := range 2 * maxPairs {
			s.Append("u1", RoleUser, fmt.Sprintf("question %d", i))
			s.Append("u1", RoleAssistant, fmt.Sprintf("answer %d", i))
		}

		turns := s.History("u1")
		if len(turns) != 2*maxPairs {
			t.Fatalf("History() returned %d turns, want %d", len(turns), 2*maxPairs)
		}
		// Oldest retained pair is the one after eviction.
		if turns[0].Content != "question 3" {
			t.Errorf("oldest retained turn = %q, want %q", turns[0].Content, "question 3")
		}
		// Retained history alternates user/assistant starting with user.
		for i, turn := range turns {
			want := RoleUser
			if i%2 == 1 {
				want = RoleAssistant
			}
			if turn.Role != want {
				t.Errorf("turns[%d].Role = %q, want %q", i, turn.Role, want)
			}
		}
	})

	t.Run("sessions are isolated per user", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryStore(10, log.NewNop())
		s.Append("alice", RoleUser, "alice message")
		s.Append("bob", RoleUser, "bob message")

		if got := s.History("alice"); len(got) != 1 || got[0].Content != "alice message" {
			t.Errorf("History(alice) = %+v, want only alice's turn", got)
		}
		if got := s.History("bob"); len(got) != 1 || got[0].Content != "bob message" {
			t.Errorf("History(bob) = %+v, want only bob's turn", got)
		}
	})

	t.Run("empty user ID maps to the default session", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryStore(10, log.NewNop())
		s.Append("", RoleUser, "anonymous")

		if got := s.History(DefaultUserID); len(got) != 1 {
			t.Errorf("History(%q) returned %d turns, want 1", DefaultUserID, len(got))
		}
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryStore(10, log.NewNop())
		turns := s.Append("u1", RoleUser, "original")
		turns[0].Content = "tampered"

		if got := s.History("u1"); got[0].Content != "original" {
			t.Errorf("History() content = %q, want %q", got[0].Content, "original")
		}
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(5, log.NewNop())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i%2)
			for j := range 50 {
				s.Append(user, RoleUser, fmt.Sprintf("message %d", j))
				s.History(user)
			}
		}()
	}
	wg.Wait()

	for _, user := range []string{"user-0", "user-1"} {
		if got := len(s.History(user)); got > 10 {
			t.Errorf("History(%s) = %d turns, want at most 10", user, got)
		}
	}
}
