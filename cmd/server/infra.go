package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	docstore "demandas/internal/document/store"
	"demandas/internal/form/sections"
	formservice "demandas/internal/form/service"
	"demandas/internal/form/session"
	formstore "demandas/internal/form/store"
	"demandas/internal/form/validation"
	"demandas/internal/platform/config"
	"demandas/internal/platform/database"
	"demandas/internal/platform/kafka"
	platformredis "demandas/internal/platform/redis"
	"demandas/pkg/platform/audit"
	"demandas/pkg/platform/audit/outbox"
	kafkapublisher "demandas/pkg/platform/audit/publishers/kafka"
	auditmemory "demandas/pkg/platform/audit/store/memory"
	auditpostgres "demandas/pkg/platform/audit/store/postgres"
	"demandas/pkg/platform/httputil"
	"demandas/pkg/platform/tx"
)

// infra holds the backends chosen from configuration. Each backend falls
// back to memory when its URL is not set.
type infra struct {
	engine     *session.Engine
	sessions   formservice.SessionStore
	documents  formservice.DocumentStore
	tx         formservice.TxRunner
	auditStore audit.Store
	outbox     *outbox.Worker

	db       *sql.DB
	redis    *platformredis.Client
	producer *kafka.Producer
	log      *slog.Logger
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{log: log}
	ok := false
	defer func() {
		if !ok {
			in.Close()
		}
	}()

	rules := sections.DefaultRuleTable()
	if cfg.Form.RulesPath != "" {
		loaded, err := sections.LoadRuleTableFile(cfg.Form.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load form rules: %w", err)
		}
		rules = loaded
		log.Info("form rules loaded", "path", cfg.Form.RulesPath)
	}
	in.engine = &session.Engine{
		Resolver:  sections.NewResolver(rules),
		Validator: validation.New(),
	}

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		in.redis = client
		in.sessions = formstore.NewRedis(client.Client, in.engine, cfg.Form.SessionTTL)
		log.Info("form sessions stored in redis")
	} else {
		in.sessions = formstore.NewInMemory(in.engine, formstore.WithTTL(cfg.Form.SessionTTL))
		log.Warn("REDIS_URL not set, form sessions kept in memory")
	}

	if cfg.DatabaseURL == "" {
		in.documents = docstore.NewInMemory()
		in.tx = tx.NoopRunner{}
		in.auditStore = auditmemory.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, documents and audit kept in memory")
		if len(cfg.Kafka.Brokers) > 0 {
			log.Warn("KAFKA_BROKERS ignored: audit outbox requires postgres")
		}
		ok = true
		return in, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	in.db = db
	in.documents = docstore.NewPostgres(db)
	runner := tx.NewRunner(db)
	in.tx = runner
	store := auditpostgres.New(db)
	in.auditStore = store

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			ClientID:     cfg.Kafka.ClientID,
			ProduceTopic: cfg.Kafka.AuditTopic,
			Timeout:      cfg.Kafka.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		in.producer = producer
		if err := producer.EnsureTopic(ctx, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
			return nil, err
		}
		in.outbox = outbox.NewWorker(store, kafkapublisher.New(producer, cfg.Kafka.AuditTopic), runner,
			outbox.WithInterval(cfg.Outbox.Interval),
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
			outbox.WithLogger(log),
		)
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events stay in the outbox")
	}

	ok = true
	return in, nil
}

// Close releases every backend connection.
func (in *infra) Close() {
	if in.producer != nil {
		in.producer.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Warn("close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.log.Warn("close postgres", "error", err)
		}
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HandleHealth reports the reachability of each configured backend.
func (in *infra) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	check := func(name string, err error) {
		if err != nil {
			in.log.WarnContext(ctx, "health check failed", "backend", name, "error", err)
			resp.Status = "degraded"
			resp.Checks[name] = "down"
			return
		}
		resp.Checks[name] = "up"
	}
	if in.db != nil {
		check("postgres", in.db.PingContext(ctx))
	}
	if in.redis != nil {
		check("redis", in.redis.Health(ctx))
	}
	if in.producer != nil {
		check("kafka", in.producer.Ping(ctx))
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}
