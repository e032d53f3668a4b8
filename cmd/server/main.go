package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	formhandler "demandas/internal/form/handler"
	formmetrics "demandas/internal/form/metrics"
	"demandas/internal/form/notify"
	formservice "demandas/internal/form/service"
	jwttoken "demandas/internal/jwt_token"
	"demandas/internal/platform/config"
	"demandas/internal/platform/httpserver"
	"demandas/internal/platform/logger"
	"demandas/internal/platform/metrics"
	"demandas/internal/platform/middleware"
	"demandas/internal/reference"
	refhandler "demandas/internal/reference/handler"
	"demandas/pkg/platform/audit/publishers/compliance"
	"demandas/pkg/platform/audit/publishers/ops"
	authmw "demandas/pkg/platform/middleware/auth"
	"demandas/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("demandas stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	tracker := ops.New(infra.auditStore,
		ops.WithSampler(ops.NewSampler(cfg.Ops.SampleRate)),
		ops.WithBufferSize(cfg.Ops.BufferSize),
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics()),
	)
	auditor := compliance.New(infra.auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)

	refService := reference.New(reference.StaticCatalog(), reference.WithLogger(log))
	formService := formservice.New(infra.sessions, infra.documents, refService,
		formservice.WithLogger(log),
		formservice.WithMetrics(formmetrics.New()),
		formservice.WithEngine(infra.engine),
		formservice.WithTxRunner(infra.tx),
		formservice.WithAuditPublisher(auditor),
		formservice.WithOpsTracker(tracker),
		formservice.WithNotificationSink(notify.NewLogSink(log)),
		formservice.WithNotificationPolicy(notify.Policy{Duration: cfg.Notification.Duration}),
	)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	router := newRouter(cfg, log, infra, jwttoken.NewJWTServiceAdapter(jwtService),
		refhandler.New(refService, log),
		formhandler.New(formService, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(tracker.Run(gctx)) })
	if infra.outbox != nil {
		g.Go(func() error { return ignoreCanceled(infra.outbox.Run(gctx)) })
	}
	g.Go(func() error {
		log.Info("starting demandas", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

type routeRegistrar interface {
	Register(r chi.Router)
}

func newRouter(cfg config.Config, log *slog.Logger, infra *infra, validator authmw.JWTValidator, handlers ...routeRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(metrics.New()))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(requesttime.Middleware)

	r.Get("/health", infra.HandleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, log))
		for _, h := range handlers {
			h.Register(r)
		}
	})
	return r
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
