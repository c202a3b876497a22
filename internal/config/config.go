// Package config provides application configuration with multi-source
// priority.
//
// Sources (highest to lowest): environment variables, config file
// (./config.yaml or ~/.docbot/config.yaml), defaults. Everything is
// resolved once at startup into a single Config passed into each
// component; no component reads the environment ad hoc.
//
// API keys (GEMINI_API_KEY, OPENAI_API_KEY) are intentionally not part of
// Config: they are read from the environment at provider construction and
// never stored or logged. Validate only checks their presence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	// ErrMissingAPIKey indicates the selected provider's API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidChunking indicates chunk size/overlap values that would
	// break the splitter.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidRetrieval indicates retrieval knobs out of range.
	ErrInvalidRetrieval = errors.New("invalid retrieval configuration")

	// ErrInvalidScope indicates the allowed base list is malformed.
	ErrInvalidScope = errors.New("invalid allowed bases")

	// ErrInvalidTemperature indicates a sampling temperature out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")
)

// Config stores application configuration.
type Config struct {
	// Server
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Tracing
	OTLPEndpoint string `mapstructure:"otlp_endpoint"` // empty disables tracing
	Environment  string `mapstructure:"environment"`

	// AI provider and models
	Provider        string  `mapstructure:"provider"`      // "gemini" (default) or "openai"
	ModelName       string  `mapstructure:"model_name"`    // completion model
	EmbedderModel   string  `mapstructure:"embedder_model"`
	Temperature     float32 `mapstructure:"temperature"`      // grounded answers
	ChatTemperature float32 `mapstructure:"chat_temperature"` // free chat
	Tone            string  `mapstructure:"tone"`

	// Crawl
	AllowedBases []string `mapstructure:"allowed_bases"` // exactly two base prefixes
	MaxPages     int      `mapstructure:"max_pages"`
	FetchTimeout int      `mapstructure:"fetch_timeout_ms"`
	CrawlDelay   int      `mapstructure:"crawl_delay_ms"`

	// Chunking and retrieval
	ChunkSize    int     `mapstructure:"chunk_size"`
	ChunkOverlap int     `mapstructure:"chunk_overlap"`
	TopK         int     `mapstructure:"top_k"`
	MinScore     float32 `mapstructure:"min_score"`

	// Conversation history
	MaxPairs int `mapstructure:"max_pairs"`
}

// Load resolves configuration from defaults, an optional config file, and
// environment overrides, then validates it (fail-fast).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".docbot"))
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("cors_origins", []string{"http://localhost:4200"})
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("environment", "dev")

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("embedder_model", "gemini-embedding-001")
	v.SetDefault("temperature", 0.2)
	v.SetDefault("chat_temperature", 0.7)
	v.SetDefault("tone", "friendly and concise")

	v.SetDefault("allowed_bases", []string{
		"https://docs.navigaglobal.com/circulation-user-manual",
		"https://docs.navigaglobal.com/advertising-user-manual",
	})
	v.SetDefault("max_pages", 40)
	v.SetDefault("fetch_timeout_ms", 10000)
	v.SetDefault("crawl_delay_ms", 250)

	v.SetDefault("chunk_size", 1200)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("top_k", 4)
	v.SetDefault("min_score", 0.1)

	v.SetDefault("max_pairs", 10)
}

// bindEnvVariables binds DOCBOT_* environment overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("addr", "DOCBOT_ADDR")
	mustBind("cors_origins", "DOCBOT_CORS_ORIGINS")
	mustBind("otlp_endpoint", "DOCBOT_OTLP_ENDPOINT")
	mustBind("environment", "DOCBOT_ENVIRONMENT")
	mustBind("provider", "DOCBOT_PROVIDER")
	mustBind("model_name", "DOCBOT_MODEL_NAME")
	mustBind("embedder_model", "DOCBOT_EMBEDDER_MODEL")
	mustBind("temperature", "DOCBOT_TEMPERATURE")
	mustBind("chat_temperature", "DOCBOT_CHAT_TEMPERATURE")
	mustBind("tone", "DOCBOT_TONE")
	mustBind("allowed_bases", "DOCBOT_ALLOWED_BASES")
	mustBind("max_pages", "DOCBOT_MAX_PAGES")
	mustBind("fetch_timeout_ms", "DOCBOT_FETCH_TIMEOUT_MS")
	mustBind("crawl_delay_ms", "DOCBOT_CRAWL_DELAY_MS")
	mustBind("chunk_size", "DOCBOT_CHUNK_SIZE")
	mustBind("chunk_overlap", "DOCBOT_CHUNK_OVERLAP")
	mustBind("top_k", "DOCBOT_TOP_K")
	mustBind("min_score", "DOCBOT_MIN_SCORE")
	mustBind("max_pairs", "DOCBOT_MAX_PAIRS")

	// NOTE: GEMINI_API_KEY / OPENAI_API_KEY are read directly at provider
	// construction, not via viper. Validate checks presence only.
}

// Validate checks the configuration for values that would misbehave at
// runtime. Returns the first problem found.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for provider %q", ErrMissingAPIKey, c.Provider)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for provider %q", ErrMissingAPIKey, c.Provider)
		}
	default:
		return fmt.Errorf("%w: %q (supported: %s, %s)", ErrInvalidProvider, c.Provider, ProviderGemini, ProviderOpenAI)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be in [0, chunk_size)", ErrInvalidChunking, c.ChunkOverlap)
	}

	if c.TopK < 1 || c.TopK > 20 {
		return fmt.Errorf("%w: top_k %d must be in [1, 20]", ErrInvalidRetrieval, c.TopK)
	}
	if c.MinScore < -1 || c.MinScore >= 1 {
		return fmt.Errorf("%w: min_score %v must be in [-1, 1)", ErrInvalidRetrieval, c.MinScore)
	}
	if c.MaxPages < 1 || c.MaxPages > 500 {
		return fmt.Errorf("%w: max_pages %d must be in [1, 500]", ErrInvalidRetrieval, c.MaxPages)
	}

	if len(c.AllowedBases) != 2 {
		return fmt.Errorf("%w: exactly 2 base prefixes required, got %d", ErrInvalidScope, len(c.AllowedBases))
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature %v must be in [0, 2]", ErrInvalidTemperature, c.Temperature)
	}
	if c.ChatTemperature < 0 || c.ChatTemperature > 2 {
		return fmt.Errorf("%w: chat_temperature %v must be in [0, 2]", ErrInvalidTemperature, c.ChatTemperature)
	}

	return nil
}
