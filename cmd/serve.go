package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/navassist/docbot/api"
	"github.com/navassist/docbot/internal/answer"
	"github.com/navassist/docbot/internal/chat"
	"github.com/navassist/docbot/internal/chunk"
	"github.com/navassist/docbot/internal/config"
	"github.com/navassist/docbot/internal/crawl"
	"github.com/navassist/docbot/internal/fetch"
	"github.com/navassist/docbot/internal/gemini"
	"github.com/navassist/docbot/internal/index"
	"github.com/navassist/docbot/internal/llm"
	"github.com/navassist/docbot/internal/log"
	"github.com/navassist/docbot/internal/observability"
	"github.com/navassist/docbot/internal/openai"
	"github.com/navassist/docbot/internal/scope"
	"github.com/navassist/docbot/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires the full application and serves until interrupted.
func runServe(parent context.Context) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	shutdownTracing, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Environment,
	}, logger.With("component", "observability"))
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	server := api.NewServer(
		api.NewHealthHandler(app.index, logger.With("component", "health")),
		api.NewChatHandler(app.chat, logger.With("component", "chat")),
		api.NewAskHandler(app.answerer, app.scope, logger.With("component", "ask")),
		cfg.CORSOrigins,
		logger.With("component", "api"),
	)

	logger.Info("docbot ready",
		"provider", cfg.Provider,
		"model", app.modelName,
		"bases", cfg.AllowedBases)

	return server.Run(ctx, cfg.Addr)
}

// app holds the wired application components.
type app struct {
	scope     *scope.Scope
	index     *index.Index
	chat      *chat.Service
	answerer  *answer.Answerer
	modelName string
}

// buildApp constructs every component from configuration.
func buildApp(ctx context.Context, cfg *config.Config, logger log.Logger) (*app, error) {
	sc, err := scope.New(cfg.AllowedBases)
	if err != nil {
		return nil, fmt.Errorf("building scope: %w", err)
	}

	completer, embedder, modelName, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("building provider: %w", err)
	}

	fetcher := fetch.New(time.Duration(cfg.FetchTimeout)*time.Millisecond, logger.With("component", "fetch"))
	crawler := crawl.New(fetcher, sc, cfg.MaxPages, time.Duration(cfg.CrawlDelay)*time.Millisecond, logger.With("component", "crawl"))

	splitter, err := chunk.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("building splitter: %w", err)
	}

	idx := index.New(&crawlLoader{crawler: crawler}, splitter, embedder, logger.With("component", "index"))

	answerer := answer.New(idx, completer, answer.Config{
		TopK:        cfg.TopK,
		MinScore:    cfg.MinScore,
		Temperature: cfg.Temperature,
		Tone:        cfg.Tone,
	}, logger.With("component", "answer"))

	sessions := session.NewMemoryStore(cfg.MaxPairs, logger.With("component", "session"))
	chatSvc := chat.New(sessions, completer, chat.Config{
		Temperature: cfg.ChatTemperature,
		Tone:        cfg.Tone,
	}, logger.With("component", "chat"))

	return &app{
		scope:     sc,
		index:     idx,
		chat:      chatSvc,
		answerer:  answerer,
		modelName: modelName,
	}, nil
}

// newProvider constructs the configured AI provider.
// Model names default per provider when left at the other provider's
// defaults.
func newProvider(ctx context.Context, cfg *config.Config, logger log.Logger) (llm.Completer, llm.Embedder, string, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		model := cfg.ModelName
		if strings.HasPrefix(model, "gemini") {
			model = "gpt-4o-mini"
		}
		embedModel := cfg.EmbedderModel
		if strings.HasPrefix(embedModel, "gemini") {
			embedModel = "text-embedding-3-small"
		}
		c, err := openai.New(openai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			Model:      model,
			EmbedModel: embedModel,
		}, logger.With("component", "openai"))
		if err != nil {
			return nil, nil, "", err
		}
		return c, c, model, nil
	default:
		c, err := gemini.New(ctx, gemini.Config{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Model:      cfg.ModelName,
			EmbedModel: cfg.EmbedderModel,
		}, logger.With("component", "gemini"))
		if err != nil {
			return nil, nil, "", err
		}
		return c, c, cfg.ModelName, nil
	}
}

// crawlLoader adapts the crawler to the index's document loader.
type crawlLoader struct {
	crawler *crawl.Crawler
}

func (l *crawlLoader) Load(ctx context.Context) ([]index.Document, error) {
	pages, err := l.crawler.Crawl(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]index.Document, len(pages))
	for i, p := range pages {
		docs[i] = index.Document{URL: p.URL, Title: p.Title, Text: p.Text}
	}
	return docs, nil
}

// newLogger builds the process logger. DEBUG in the environment enables
// debug level; DOCBOT_LOG_JSON switches to JSON output.
func newLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("DOCBOT_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}
