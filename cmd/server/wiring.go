package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"procuration/internal/audit"
	"procuration/internal/kv"
	"procuration/internal/lifecycle"
	"procuration/internal/mail"
	"procuration/internal/platform/config"
	platformredis "procuration/internal/platform/redis"
	ratelimitmetrics "procuration/internal/ratelimit/metrics"
	"procuration/internal/ratelimit/service/requestlimit"
	"procuration/internal/ratelimit/store/bucket"
	httptransport "procuration/internal/transport/http"
)

// infra holds the shared stores. With Redis configured every store is
// Redis-backed; otherwise everything lives in process memory.
type infra struct {
	redis   *platformredis.Client
	kv      kv.Store
	locker  kv.Locker
	buckets requestlimit.BucketStore
	health  httptransport.HealthChecker
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		log.Warn("REDIS_URL not set, using in-memory stores; state is lost on restart")
		return &infra{
			kv:      kv.NewMemory(),
			locker:  kv.NewMemoryLocker(),
			buckets: bucket.New(),
		}, nil
	}
	return &infra{
		redis:   client,
		kv:      kv.NewRedis(client.Client),
		locker:  kv.NewRedisLocker(client.Client, cfg.Redis.LockTTL),
		buckets: bucket.NewRedis(client.Client),
		health:  client,
	}, nil
}

func (i *infra) Close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
}

// buildThrottle returns nil when throttling is disabled; the lifecycle
// service then admits every submission.
func buildThrottle(cfg config.ThrottleConfig, i *infra, log *slog.Logger, publisher audit.Publisher, reg prometheus.Registerer) (lifecycle.Throttle, error) {
	if cfg.Disabled {
		log.Warn("submission throttle disabled")
		return nil, nil
	}
	svc, err := requestlimit.New(i.buckets,
		requestlimit.WithLimit(cfg.Limit, cfg.Window),
		requestlimit.WithAllowlist(cfg.Allowlist...),
		requestlimit.WithLogger(log),
		requestlimit.WithAuditPublisher(publisher),
		requestlimit.WithMetrics(ratelimitmetrics.New(reg)),
	)
	if err != nil {
		return nil, fmt.Errorf("build throttle: %w", err)
	}
	return svc, nil
}

func buildMailer(cfg config.MailConfig, log *slog.Logger) lifecycle.Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Warn("SENDGRID_API_KEY not set, mails are logged instead of sent")
		return mail.NewLogSender(log)
	}
	return mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.FromName, cfg.FromAddress,
		mail.WithSandboxMode(cfg.SandboxMode),
	)
}

// buildAuditSink picks where queued audit events end up. The returned close
// func flushes pending records.
func buildAuditSink(cfg config.AuditConfig, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogPublisher(log), func() {}, nil
	}
	publisher, err := audit.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("build audit publisher: %w", err)
	}
	log.Info("publishing audit events to kafka", "topic", cfg.Topic)
	return publisher, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		publisher.Close(ctx)
	}, nil
}
