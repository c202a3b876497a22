package observability

import (
	"context"
	"testing"

	"github.com/navassist/docbot/internal/log"
)

func TestSetup(t *testing.T) {
	t.Run("no endpoint disables tracing", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), Config{}, log.NewNop())
		if err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if shutdown == nil {
			t.Fatal("Setup() returned nil shutdown")
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("noop shutdown error = %v", err)
		}
	})

	t.Run("endpoint enables tracing with working shutdown", func(t *testing.T) {
		// Setup sets these for span attribution; restore them after.
		t.Setenv("OTEL_SERVICE_NAME", "")
		t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "")

		shutdown, err := Setup(context.Background(), Config{
			Endpoint:    "localhost:4318",
			Environment: "test",
		}, log.NewNop())
		if err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if shutdown == nil {
			t.Fatal("Setup() returned nil shutdown")
		}
		// No spans were recorded, so shutdown flushes nothing and must
		// not hang or fail.
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown error = %v", err)
		}
	})
}
