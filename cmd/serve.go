package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"careers/listing-service/internal/cache"
	"careers/listing-service/internal/config"
	"careers/listing-service/internal/db"
	"careers/listing-service/internal/events"
	"careers/listing-service/internal/grpcserver"
	"careers/listing-service/internal/httpapi"
	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/metrics"
	"careers/listing-service/internal/scheduler"
	"careers/listing-service/internal/store"
)

// backend is the wired record source shared by the server-side commands.
type backend struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	rdb       *redis.Client
	collector *metrics.Collector
	source    *cache.Listings
	apps      *kanban.Service
}

func connect(ctx context.Context) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.MaxDBConns})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	slog.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	source := cache.New(store.New(pool), rdb, cfg.CacheTTL).WithObserver(collector)
	apps := kanban.NewService(source, events.NewPublisher(rdb), kanban.WithObserver(collector))

	return &backend{cfg: cfg, pool: pool, rdb: rdb, collector: collector, source: source, apps: apps}, nil
}

func (b *backend) Close() {
	if err := b.rdb.Close(); err != nil {
		slog.Warn("closing redis client", "err", err)
	}
	b.pool.Close()
}

func serveCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and gRPC servers and the expired-position sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	b, err := connect(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	cfg := b.cfg

	if migrate {
		if err := db.Migrate(ctx, b.pool); err != nil {
			return err
		}
	}

	// ── HTTP ────────────────────────────────────────────────────────────────
	router := httpapi.NewRouter(httpapi.Deps{
		Catalog:         b.source,
		Applications:    b.apps,
		DefaultPageSize: cfg.DefaultPageSize,
		Observer:        b.collector,
		Metrics:         b.collector.Handler(),
		Version:         version,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	// ── gRPC ────────────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on :%s: %w", cfg.GRPCPort, err)
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor))
	grpcserver.Register(gs, grpcserver.NewServer(b.source, b.apps, cfg.DefaultPageSize))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(grpcserver.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// ── Sweep ───────────────────────────────────────────────────────────────
	sched := scheduler.New(b.source, b.collector, cfg.SweepSpec)
	if err := sched.Start(ctx); err != nil {
		_ = lis.Close()
		return err
	}
	defer sched.Stop()

	errCh := make(chan error, 2)
	go func() {
		slog.Info("http listening", "port", cfg.Port, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		slog.Info("grpc listening", "port", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		slog.Error("server failed", "err", err)
	}

	// ── Graceful shutdown ───────────────────────────────────────────────────
	slog.Info("shutting down")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		slog.Error("http shutdown", "err", serr)
	}
	gs.GracefulStop()
	slog.Info("stopped")
	return err
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			return db.Migrate(cmd.Context(), b.pool)
		},
	}
}

func sweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close positions whose deadline has passed, once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			n, err := scheduler.New(b.source, nil, b.cfg.SweepSpec).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %d expired position(s)\n", n)
			return nil
		},
	}
}

func watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print application workflow events as they are published",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			b, err := connect(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			evs, err := events.Subscribe(ctx, b.rdb)
			if err != nil {
				return err
			}
			for ev := range evs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-16s %s %s → %s\n",
					ev.At.Format(time.RFC3339), ev.Type, ev.ApplicationID, ev.From, ev.To)
			}
			return nil
		},
	}
}
