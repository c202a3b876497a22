// Package chat implements free-chat mode: unrestricted conversation with
// per-user short-term memory and no retrieval. It must never depend on
// index readiness, so a slow or hung crawl cannot block chat requests.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/navassist/docbot/internal/llm"
	"github.com/navassist/docbot/internal/session"
)

// ErrEmptyMessage indicates the request carried no message text.
var ErrEmptyMessage = errors.New("message is required")

// fallbackReply is returned when the model produces an empty response.
const fallbackReply = "I'm sorry, I couldn't come up with a response. Please try rephrasing."

// Config holds the chat service settings.
type Config struct {
	Temperature float32
	Tone        string // e.g. "friendly and concise"
}

// Service answers free-chat messages.
type Service struct {
	sessions  session.Store
	completer llm.Completer
	cfg       Config
	logger    *slog.Logger
}

// New creates a chat Service.
func New(sessions session.Store, completer llm.Completer, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:  sessions,
		completer: completer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Reply answers message in the context of the user's retained history.
// The user turn is recorded before the model call; the assistant turn is
// recorded only on success.
func (s *Service) Reply(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	turns := s.sessions.Append(userID, session.RoleUser, message)

	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}

	reply, err := s.completer.Complete(ctx, messages, llm.CompleteOptions{
		System:      s.systemPrompt(),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	if strings.TrimSpace(reply) == "" {
		s.logger.Warn("model returned empty reply", "user", userID)
		reply = fallbackReply
	}

	s.sessions.Append(userID, session.RoleAssistant, reply)
	return reply, nil
}

func (s *Service) systemPrompt() string {
	tone := s.cfg.Tone
	if tone == "" {
		tone = "friendly and concise"
	}
	return "You are a helpful assistant. Keep your answers " + tone + "."
}
