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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"procuration/internal/audit"
	"procuration/internal/lifecycle"
	"procuration/internal/locality"
	"procuration/internal/matching"
	"procuration/internal/platform/config"
	"procuration/internal/platform/httpserver"
	"procuration/internal/platform/logger"
	"procuration/internal/platform/metrics"
	"procuration/internal/request/store"
	"procuration/internal/session"
	"procuration/internal/token"
	httptransport "procuration/internal/transport/http"
	"procuration/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and owns the process lifecycle. Business logic
// lives in internal/lifecycle.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("procuration exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	stores, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	sink, closeSink, err := buildAuditSink(cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeSink()
	auditQueue := audit.NewBuffered(1024)

	throttle, err := buildThrottle(cfg.Throttle, stores, log, auditQueue, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	localities := locality.NewMetadataStore(stores.kv)
	geocoder := locality.NewBANClient(cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout,
		locality.WithLogger(log),
		locality.WithFallback(localities),
		locality.WithBreaker(circuit.New("geocoder")),
		locality.WithRetryInterval(cfg.Geocoder.RetryInterval),
	)
	matches := matching.New(stores.kv, stores.locker)
	sessions := session.New(cfg.Session.SigningKey, cfg.Session.TTL)

	svc, err := lifecycle.New(lifecycle.Dependencies{
		Records:    store.New(stores.kv),
		Tokens:     token.New(stores.kv),
		Locker:     stores.locker,
		Sessions:   sessions,
		Mailer:     buildMailer(cfg.Mail, log),
		Geocoder:   geocoder,
		Localities: localities,
		Matches:    matches,
		Throttle:   throttle,
	},
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(m),
		lifecycle.WithAuditPublisher(auditQueue),
		lifecycle.WithHost(cfg.Server.Host),
		lifecycle.WithConsularListDest(cfg.Mail.ConsularListDest),
		lifecycle.WithMaxLocalityChanges(cfg.MaxLocalityChanges),
	)
	if err != nil {
		return fmt.Errorf("build lifecycle service: %w", err)
	}

	handler := httptransport.New(svc, matches, log, httptransport.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	})
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		Logger:     log,
		Metrics:    m,
		Gatherer:   prometheus.DefaultGatherer,
		Sessions:   sessions,
		CookieName: cfg.Session.CookieName,
		TrustProxy: cfg.Server.TrustProxy,
		AdminToken: cfg.Server.AdminToken,
		Health:     stores.health,
	})
	srv := httpserver.New(cfg.Server.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return audit.NewWorker(sink, auditQueue, log).Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting procuration", "addr", cfg.Server.Addr, "redis", stores.redis != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
