package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/jinrou/internal/platform/otel"
)

func TestSetupIsNoopWithoutEndpoint(t *testing.T) {
	t.Setenv("JINROU_OTEL_ENDPOINT", "")
	t.Setenv("JINROU_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupHonorsDisabledFlag(t *testing.T) {
	t.Setenv("JINROU_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("JINROU_OTEL_ENABLED", "false")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupRejectsBadEnv(t *testing.T) {
	t.Setenv("JINROU_OTEL_SAMPLE_RATIO", "often")
	if _, err := otel.Setup(context.Background(), "test-service"); err == nil {
		t.Fatal("expected parse error for sample ratio")
	}
}

func TestSetupWithConfigCreatesProvider(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
	}{
		{name: "always", ratio: 1},
		{name: "sampled", ratio: 0.25},
		{name: "negative", ratio: -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Non-routable address, nothing is exported.
			shutdown, err := otel.SetupWithConfig(context.Background(), "test-service", otel.Config{
				Endpoint:    "http://192.0.2.1:4318",
				Enabled:     true,
				SampleRatio: tc.ratio,
			})
			if err != nil {
				t.Fatalf("setup: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}
