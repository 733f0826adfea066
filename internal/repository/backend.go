package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/config"
	"github.com/stemsi/exstem-practice/internal/database"
)

// Backend is the bank source selected by BANK_SOURCE together with the
// connection it owns.
type Backend struct {
	Source BankSource
	// Store is nil for the file source, which is read-only.
	Store BankStore
	// Redis is set only for the redis source; the reload worker and the
	// metrics stream use it.
	Redis *RedisBankSource
	RDB   *redis.Client

	closers []func()
}

// OpenBackend connects to the configured bank source.
func OpenBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.BankSource {
	case config.BankSourceFile:
		b.Source = NewFileBankSource(cfg.BankPath)

	case config.BankSourceRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		src := NewRedisBankSource(rdb, cfg.BankRedisKey)
		b.Source, b.Store, b.Redis, b.RDB = src, src, src, rdb
		b.closers = append(b.closers, func() { _ = rdb.Close() })

	case config.BankSourcePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		src := NewPostgresBankSource(pool)
		b.Source, b.Store = src, src
		b.closers = append(b.closers, pool.Close)

	case config.BankSourceSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		src := NewSQLiteBankSource(db)
		if err := src.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		b.Source, b.Store = src, src
		b.closers = append(b.closers, func() { _ = db.Close() })

	default:
		return nil, fmt.Errorf("unknown bank source %q", cfg.BankSource)
	}

	return b, nil
}

// Close releases the connection, if any.
func (b *Backend) Close() {
	for _, c := range b.closers {
		c()
	}
}
