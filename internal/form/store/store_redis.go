package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"demandas/internal/form/session"
	id "demandas/pkg/domain"
	"demandas/pkg/platform/sentinel"
)

const (
	keyPrefix        = "form:"
	maxWatchAttempts = 3
)

// RedisStore keeps sessions as JSON snapshots with a sliding TTL. Execute
// uses WATCH so concurrent writers to one session never interleave.
type RedisStore struct {
	client redis.UniversalClient
	engine *session.Engine
	ttl    time.Duration
}

// NewRedis builds a store over client.
func NewRedis(client redis.UniversalClient, engine *session.Engine, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, engine: engine, ttl: ttl}
}

func key(formID id.FormID) string {
	return keyPrefix + formID.String()
}

// Create stores a new session. An existing entry is a conflict.
func (s *RedisStore) Create(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(sess.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal form session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(sess.ID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create form session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if !ok {
		return fmt.Errorf("form session %s: %w", sess.ID, sentinel.ErrConflict)
	}
	return nil
}

// FindByID loads a session.
func (s *RedisStore) FindByID(ctx context.Context, formID id.FormID) (*session.Session, error) {
	return s.load(ctx, s.client, formID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter, formID id.FormID) (*session.Session, error) {
	raw, err := c.Get(ctx, key(formID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load form session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var snap session.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode form session: %w", err)
	}
	return session.Restore(snap, s.engine), nil
}

// Execute loads the session under WATCH, applies fn and writes it back in a
// MULTI block, refreshing the TTL. A concurrent write aborts the attempt and
// it is retried on fresh state; after the last attempt the conflict is
// returned.
func (s *RedisStore) Execute(ctx context.Context, formID id.FormID, fn func(*session.Session) error) (*session.Session, error) {
	k := key(formID)
	var result *session.Session

	txf := func(tx *redis.Tx) error {
		sess, err := s.load(ctx, tx, formID)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		payload, err := json.Marshal(sess.Snapshot())
		if err != nil {
			return fmt.Errorf("marshal form session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = sess
		return nil
	}

	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("form session %s: %w", formID, sentinel.ErrConflict)
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, formID id.FormID) error {
	n, err := s.client.Del(ctx, key(formID)).Result()
	if err != nil {
		return fmt.Errorf("delete form session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
