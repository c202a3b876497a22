// Package openai implements the llm contracts on the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/navassist/docbot/internal/llm"
)

// embedBatchSize bounds how many inputs go into a single embedding call.
const embedBatchSize = 100

// ErrMissingAPIKey indicates OPENAI_API_KEY is not set.
var ErrMissingAPIKey = errors.New("missing OpenAI API key")

// Config holds the provider settings.
type Config struct {
	APIKey     string
	Model      string // completion model, e.g. "gpt-4o-mini"
	EmbedModel string // embedding model, e.g. "text-embedding-3-small"
}

// Client wraps the OpenAI SDK behind llm.Completer and llm.Embedder.
type Client struct {
	client     openai.Client
	model      string
	embedModel string
	logger     *slog.Logger
}

// New creates an OpenAI client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client:     openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		logger:     logger,
	}, nil
}

// Complete generates a single reply for the conversation.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.CompleteOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(float64(opts.Temperature)),
	}
	if opts.System != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(opts.System))
	}
	for _, m := range messages {
		if m.Role == llm.RoleAssistant {
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		} else {
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
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

		resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: openai.EmbeddingModel(c.embedModel),
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: batch,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedding: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("openai embedding: got %d vectors for %d inputs", len(resp.Data), len(batch))
		}

		out := make([][]float32, len(batch))
		for _, d := range resp.Data {
			vec := make([]float32, len(d.Embedding))
			for i, v := range d.Embedding {
				vec[i] = float32(v)
			}
			out[d.Index] = vec
		}
		vectors = append(vectors, out...)
	}
	c.logger.Debug("embedded texts", "model", c.embedModel, "count", len(texts))
	return vectors, nil
}
