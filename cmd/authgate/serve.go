package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/httpapi"
	promexport "github.com/MrEthical07/authgate/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

func serveCmd() *cobra.Command {
	var embeddedRedis bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Long: `Run the HTTP gateway until SIGINT or SIGTERM.

The login throttle uses REDIS_ADDR when set. --embedded-redis starts an
in-process Redis instead, for local development only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, embeddedRedis)
		},
	}

	cmd.Flags().BoolVar(&embeddedRedis, "embedded-redis", false, "start an in-process Redis for the login throttle")
	return cmd
}

func runServe(ctx context.Context, embeddedRedis bool) error {
	cfg, err := authgate.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	shutdownTracing, err := setupTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", "error", err)
		}
	}()
	if cfg.Tracing.Endpoint != "" {
		logger.Info("exporting traces", "endpoint", cfg.Tracing.Endpoint, "sample_ratio", cfg.Tracing.SampleRatio)
	}

	rdb, cleanup, err := openRedis(cfg.RateLimit.RedisAddr, embeddedRedis, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	b := authgate.New().
		WithConfig(cfg).
		WithLogger(logger).
		WithTracer(otel.Tracer("github.com/MrEthical07/authgate"))
	if rdb != nil {
		b = b.WithRedis(rdb)
	}
	engine, err := b.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	for _, w := range engine.SecurityReport().Warnings {
		logger.Warn("configuration warning", "warning", w)
	}

	opts := httpapi.Options{Logger: logger}
	if cfg.Metrics.Enabled {
		opts.Metrics = promexport.NewPrometheusExporter(engine).Handler()
	}

	srv, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:            ":" + cfg.HTTP.Port,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, httpapi.NewRouter(engine, opts), logger)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// openRedis returns nil when neither an address nor the embedded instance
// is requested; the throttle is then disabled.
func openRedis(addr string, embedded bool, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	if addr == "" && !embedded {
		return nil, func() {}, nil
	}

	var mr *miniredis.Miniredis
	if addr == "" {
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded redis: %w", err)
		}
		addr = mr.Addr()
		logger.Warn("using embedded redis; throttle state is lost on restart", "addr", addr)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	cleanup := func() {
		_ = client.Close()
		if mr != nil {
			mr.Close()
		}
	}
	return client, cleanup, nil
}

func newLogger(cfg authgate.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(h).With("service", "authgate")
}
