package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/jinrou/internal/platform/callertoken"
	"github.com/louisbranch/jinrou/internal/platform/timeouts"
	httpapi "github.com/louisbranch/jinrou/internal/services/game/api/http"
	"github.com/louisbranch/jinrou/internal/services/game/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls game service startup.
type RuntimeConfig struct {
	// Port serves gRPC health checks.
	Port int
	// HTTPAddr serves the JSON API.
	HTTPAddr          string
	DBPath            string
	MaxUpdateAttempts int
	ReconcileInterval time.Duration
	AdminUserIDs      []string
	// CallerTokens switches the API from the trusted user header to signed
	// bearer tokens.
	CallerTokens *callertoken.Config
}

const (
	defaultGamePort          = 8082
	defaultGameHTTPAddr      = ":8080"
	defaultGameDB            = "data/game.db"
	defaultReconcileInterval = 30 * time.Second
	healthService            = "jinrou.game"
)

// Run opens storage and serves the game API until ctx is canceled.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultGamePort
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = defaultGameHTTPAddr
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultGameDB
	}
	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on game port %d: %w", cfg.Port, err)
	}
	defer grpcListener.Close()
	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on game http %s: %w", cfg.HTTPAddr, err)
	}
	defer httpListener.Close()
	return serve(ctx, cfg, grpcListener, httpListener)
}

// serve runs the servers on the given listeners until ctx is canceled.
func serve(ctx context.Context, cfg RuntimeConfig, grpcListener, httpListener net.Listener) error {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create game storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open game sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close game sqlite store: %v", closeErr)
		}
	}()

	svc := NewService(store, Config{MaxUpdateAttempts: cfg.MaxUpdateAttempts})

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_SERVING)

	httpServer := &http.Server{
		Handler: httpapi.NewHandler(svc, httpapi.Config{
			AdminUserIDs: cfg.AdminUserIDs,
			Tokens:       cfg.CallerTokens,
			Logf:         log.Printf,
		}),
		ReadHeaderTimeout: timeouts.ReadHeader,
		IdleTimeout:       timeouts.Idle,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		reconcileLoop(groupCtx, svc, cfg.ReconcileInterval)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		healthServer.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown http server: %v", err)
		}
		grpcServer.GracefulStop()
		return nil
	})

	log.Printf("game server listening at %v (grpc) and %v (http)", grpcListener.Addr(), httpListener.Addr())
	return group.Wait()
}

// reconcileLoop finalizes stuck games at startup and then on every tick.
func reconcileLoop(ctx context.Context, svc *Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		done, err := svc.ReconcileFinished(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Printf("reconcile finished games: %v", err)
		case done > 0:
			log.Printf("reconciled %d finished games", done)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
