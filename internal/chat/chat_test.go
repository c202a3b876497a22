package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/navassist/docbot/internal/llm"
	"github.com/navassist/docbot/internal/log"
	"github.com/navassist/docbot/internal/session"
)

// fakeCompleter returns a canned reply and records what it was asked.
type fakeCompleter struct {
	reply    string
	err      error
	messages []llm.Message
	opts     llm.CompleteOptions
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message, opts llm.CompleteOptions) (string, error) {
	f.messages = messages
	f.opts = opts
	return f.reply, f.err
}

func newTestService(completer llm.Completer) (*Service, *session.MemoryStore) {
	store := session.NewMemoryStore(10, log.NewNop())
	svc := New(store, completer, Config{Temperature: 0.7}, log.NewNop())
	return svc, store
}

func TestReply(t *testing.T) {
	t.Parallel()

	t.Run("returns the model reply and records both turns", func(t *testing.T) {
		t.Parallel()

		completer := &fakeCompleter{reply: "hello back"}
		svc, store := newTestService(completer)

		got, err := svc.Reply(context.Background(), "u1", "hello")
		if err != nil {
			t.Fatalf("Reply() error = %v", err)
		}
		if got != "hello back" {
			t.Errorf("Reply() = %q, want %q", got, "hello back")
		}

		turns := store.History("u1")
		if len(turns) != 2 {
			t.Fatalf("History() has %d turns, want 2", len(turns))
		}
		if turns[1].Role != session.RoleAssistant || turns[1].Content != "hello back" {
			t.Errorf("assistant turn = %+v, want the model reply", turns[1])
		}
	})

	t.Run("history is sent to the model", func(t *testing.T) {
		t.Parallel()

		completer := &fakeCompleter{reply: "reply"}
		svc, _ := newTestService(completer)

		if _, err := svc.Reply(context.Background(), "u1", "first"); err != nil {
			t.Fatalf("Reply() error = %v", err)
		}
		if _, err := svc.Reply(context.Background(), "u1", "second"); err != nil {
			t.Fatalf("Reply() error = %v", err)
		}

		// user first, assistant reply, user second
		if len(completer.messages) != 3 {
			t.Fatalf("model saw %d messages, want 3", len(completer.messages))
		}
		if completer.messages[0].Content != "first" || completer.messages[2].Content != "second" {
			t.Errorf("model messages = %+v, want history then new message", completer.messages)
		}
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		t.Parallel()

		svc, store := newTestService(&fakeCompleter{reply: "x"})
		for _, msg := range []string{"", "   ", "\n"} {
			if _, err := svc.Reply(context.Background(), "u1", msg); !errors.Is(err, ErrEmptyMessage) {
				t.Errorf("Reply(%q) error = %v, want ErrEmptyMessage", msg, err)
			}
		}
		if got := store.History("u1"); len(got) != 0 {
			t.Errorf("History() has %d turns after rejected messages, want 0", len(got))
		}
	})

	t.Run("model failure leaves no assistant turn", func(t *testing.T) {
		t.Parallel()

		svc, store := newTestService(&fakeCompleter{err: errors.New("upstream down")})

		if _, err := svc.Reply(context.Background(), "u1", "hello"); err == nil {
			t.Fatal("Reply() = nil error, want error")
		}

		turns := store.History("u1")
		if len(turns) != 1 || turns[0].Role != session.RoleUser {
			t.Errorf("History() = %+v, want only the user turn", turns)
		}
	})

	t.Run("empty model reply falls back to a fixed message", func(t *testing.T) {
		t.Parallel()

		svc, store := newTestService(&fakeCompleter{reply: "   "})

		got, err := svc.Reply(context.Background(), "u1", "hello")
		if err != nil {
			t.Fatalf("Reply() error = %v", err)
		}
		if got != fallbackReply {
			t.Errorf("Reply() = %q, want fallback", got)
		}
		turns := store.History("u1")
		if len(turns) != 2 || turns[1].Content != fallbackReply {
			t.Errorf("History() = %+v, want fallback recorded as assistant turn", turns)
		}
	})

	t.Run("system prompt carries the configured tone", func(t *testing.T) {
		t.Parallel()

		completer := &fakeCompleter{reply: "ok"}
		store := session.NewMemoryStore(10, log.NewNop())
		svc := New(store, completer, Config{Tone: "brisk and formal"}, log.NewNop())

		if _, err := svc.Reply(context.Background(), "u1", "hello"); err != nil {
			t.Fatalf("Reply() error = %v", err)
		}
		if want := "brisk and formal"; !strings.Contains(completer.opts.System, want) {
			t.Errorf("system prompt %q missing tone %q", completer.opts.System, want)
		}
	})
}
