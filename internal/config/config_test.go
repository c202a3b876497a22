package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes Validate when the
// provider key is present in the environment.
func validConfig() *Config {
	return &Config{
		Addr:            "127.0.0.1:8080",
		Provider:        ProviderGemini,
		ModelName:       "gemini-2.5-flash",
		EmbedderModel:   "gemini-embedding-001",
		Temperature:     0.2,
		ChatTemperature: 0.7,
		AllowedBases: []string{
			"https://docs.navigaglobal.com/circulation-user-manual",
			"https://docs.navigaglobal.com/advertising-user-manual",
		},
		MaxPages:     40,
		ChunkSize:    1200,
		ChunkOverlap: 200,
		TopK:         4,
		MinScore:     0.1,
		MaxPairs:     10,
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "test-key")

	t.Run("valid config passes", func(t *testing.T) {
		if err := validConfig().Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "llama" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "overlap equals chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = c.ChunkSize },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.ChunkOverlap = -1 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "zero top_k",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidRetrieval,
		},
		{
			name:    "min_score out of range",
			mutate:  func(c *Config) { c.MinScore = 1.5 },
			wantErr: ErrInvalidRetrieval,
		},
		{
			name:    "zero max_pages",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidRetrieval,
		},
		{
			name:    "one base",
			mutate:  func(c *Config) { c.AllowedBases = c.AllowedBases[:1] },
			wantErr: ErrInvalidScope,
		},
		{
			name:    "three bases",
			mutate:  func(c *Config) { c.AllowedBases = append(c.AllowedBases, "https://docs.navigaglobal.com/extra") },
			wantErr: ErrInvalidScope,
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Temperature = 3 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "chat temperature negative",
			mutate:  func(c *Config) { c.ChatTemperature = -0.1 },
			wantErr: ErrInvalidTemperature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_APIKeys(t *testing.T) {
	t.Run("gemini key missing", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		cfg := validConfig()
		if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("Validate() = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("openai key missing", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := validConfig()
		cfg.Provider = ProviderOpenAI
		if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("Validate() = %v, want ErrMissingAPIKey", err)
		}
	})

	t.Run("only the selected provider key is required", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("OPENAI_API_KEY", "")
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider != ProviderGemini {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderGemini)
	}
	if cfg.ChunkSize != 1200 || cfg.ChunkOverlap != 200 {
		t.Errorf("chunking = (%d, %d), want (1200, 200)", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if len(cfg.AllowedBases) != 2 {
		t.Errorf("AllowedBases = %v, want 2 entries", cfg.AllowedBases)
	}
	if cfg.MaxPages != 40 {
		t.Errorf("MaxPages = %d, want 40", cfg.MaxPages)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DOCBOT_MAX_PAGES", "12")
	t.Setenv("DOCBOT_TONE", "terse")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxPages != 12 {
		t.Errorf("MaxPages = %d, want 12", cfg.MaxPages)
	}
	if cfg.Tone != "terse" {
		t.Errorf("Tone = %q, want %q", cfg.Tone, "terse")
	}
}
