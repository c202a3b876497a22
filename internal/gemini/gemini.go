// Package gemini implements the llm contracts on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/navassist/docbot/internal/llm"
)

// embedBatchSize bounds how many inputs go into a single embedding call.
const embedBatchSize = 100

// ErrMissingAPIKey indicates GEMINI_API_KEY is not set.
var ErrMissingAPIKey = errors.New("missing Gemini API key")

// Config holds the provider settings.
type Config struct {
	APIKey     string
	Model      string // completion model, e.g. "gemini-2.5-flash"
	EmbedModel string // embedding model, e.g. "gemini-embedding-001"
}

// Client wraps the Gemini SDK behind llm.Completer and llm.Embedder.
type Client struct {
	client     *genai.Client
	model      string
	embedModel string
	logger     *slog.Logger
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		client:     gc,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		logger:     logger,
	}, nil
}

// Complete generates a single reply for the conversation.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.CompleteOptions) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	c.logger.Debug("completion", "model", c.model, "messages", len(messages), "reply_len", len(text))
	return text, nil
}

// Embed returns one vector per input text, batched at embedBatchSize.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		contents := make([]*genai.Content, len(batch))
		for i, t := range batch {
			contents[i] = genai.NewContentFromText(t, genai.RoleUser)
		}

		resp, err := c.client.Models.EmbedContent(ctx, c.embedModel, contents, nil)
		if err != nil {
			return nil, fmt.Errorf("gemini embedding: %w", err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("gemini embedding: got %d vectors for %d inputs", len(resp.Embeddings), len(batch))
		}
		for _, e := range resp.Embeddings {
			vectors = append(vectors, e.Values)
		}
	}
	c.logger.Debug("embedded texts", "model", c.embedModel, "count", len(texts))
	return vectors, nil
}
