package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/exstem-practice/internal/config"
	"github.com/stemsi/exstem-practice/internal/model"
	"github.com/stemsi/exstem-practice/internal/qbank"
)

// RedisBankSource keeps the bank as one canonical JSON document under a key.
type RedisBankSource struct {
	rdb *redis.Client
	key string
}

// NewRedisBankSource creates a new RedisBankSource.
func NewRedisBankSource(rdb *redis.Client, key string) *RedisBankSource {
	return &RedisBankSource{rdb: rdb, key: key}
}

// Load fetches and decodes the bank document.
func (s *RedisBankSource) Load(ctx context.Context) ([]model.RawQuestion, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %s", ErrBankNotFound, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("get bank document: %w", err)
	}
	return qbank.DecodeJSON(data)
}

// ReplaceAll writes the canonical export of questions, updates the meta hash
// and announces the change on the updates channel, in one transaction.
func (s *RedisBankSource) ReplaceAll(ctx context.Context, questions []model.Question) error {
	doc, err := qbank.Export(questions)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key, doc, 0)
		pipe.HSet(ctx, config.CacheKey.BankMetaKey(s.key),
			"count", len(questions),
			"updated_at", time.Now().UTC().Format(time.RFC3339),
		)
		pipe.Publish(ctx, config.CacheKey.BankUpdatesChannel(s.key), len(questions))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store bank document: %w", err)
	}
	return nil
}

// Subscribe listens for ReplaceAll announcements. The caller closes the
// returned PubSub.
func (s *RedisBankSource) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.BankUpdatesChannel(s.key))
}
