//go:build integration

package outbox_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"demandas/internal/platform/kafka"
	"demandas/migrations"
	id "demandas/pkg/domain"
	audit "demandas/pkg/platform/audit"
	"demandas/pkg/platform/audit/outbox"
	kafkapub "demandas/pkg/platform/audit/publishers/kafka"
	"demandas/pkg/platform/audit/store/postgres"
	txcontext "demandas/pkg/platform/tx"
	"demandas/pkg/testutil/containers"
)

const topic = "demandas.audit.test"

type OutboxSuite struct {
	suite.Suite
	db       *sql.DB
	brokers  []string
	producer *kafka.Producer
	store    *postgres.Store
}

func TestOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupSuite() {
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(s.T())
	db, err := sql.Open("pgx", pg.DSN)
	s.Require().NoError(err)
	s.db = db
	s.Require().NoError(migrations.Apply(ctx, db))
	s.store = postgres.New(db)

	s.brokers = containers.GetManager().GetRedpanda(s.T()).Brokers
	s.producer, err = kafka.NewProducer(kafka.Config{Brokers: s.brokers, ClientID: "outbox-test"}, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.producer.EnsureTopic(ctx, topic, 1, 1))
}

func (s *OutboxSuite) SetupTest() {
	_, err := s.db.ExecContext(context.Background(), "TRUNCATE outbox")
	s.Require().NoError(err)
}

func (s *OutboxSuite) TearDownSuite() {
	s.producer.Close()
	_ = s.db.Close()
}

func (s *OutboxSuite) TestCommittedEventsReachKafka() {
	ctx := context.Background()
	runner := txcontext.NewRunner(s.db)
	docID := id.DocumentID(uuid.New())

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.Append(ctx, audit.Event{
			Action:     string(audit.EventDocumentCreated),
			AnalystID:  id.AnalystID(uuid.New()),
			DocumentID: docID,
			Timestamp:  time.Now(),
		})
	})
	s.Require().NoError(err)

	worker := outbox.NewWorker(s.store, kafkapub.New(s.producer, topic), runner)
	n, err := worker.Drain(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = worker.Drain(ctx)
	s.Require().NoError(err)
	s.Zero(n, "published entries are not shipped twice")

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	fetches := consumer.PollRecords(pollCtx, 1)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal(docID.String(), string(records[0].Key))

	var event audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &event))
	s.Equal(string(audit.EventDocumentCreated), event.Action)
	s.Equal(audit.CategoryCompliance, event.Category)
}

func (s *OutboxSuite) TestRolledBackEventsStayOut() {
	ctx := context.Background()
	runner := txcontext.NewRunner(s.db)

	_ = runner.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.Append(ctx, audit.Event{
			Action:     string(audit.EventDocumentUpdated),
			DocumentID: id.DocumentID(uuid.New()),
		}))
		return sql.ErrTxDone
	})

	var pending []postgres.Entry
	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		pending, err = s.store.Pending(ctx, 10)
		return err
	})
	s.Require().NoError(err)
	s.Empty(pending)
}
