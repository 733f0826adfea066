package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"BANK_SOURCE", "BANK_PATH", "DEFAULT_TIME_LIMIT_MINUTES", "RANDOM_SEED", "ALLOWED_ORIGINS", "TICK_INTERVAL_MS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, BankSourceFile, cfg.BankSource)
	assert.Equal(t, "data/questions.json", cfg.BankPath)
	assert.Equal(t, 60*time.Minute, cfg.DefaultTimeLimit)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Zero(t, cfg.RandomSeed)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BANK_SOURCE", "SQLite")
	t.Setenv("DEFAULT_TIME_LIMIT_MINUTES", "15")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()
	assert.Equal(t, BankSourceSQLite, cfg.BankSource)
	assert.Equal(t, 15*time.Minute, cfg.DefaultTimeLimit)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, int32(4), cfg.MaxDBConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "qbank:questions:meta", CacheKey.BankMetaKey("qbank:questions"))
	assert.Equal(t, "qbank:questions:updates", CacheKey.BankUpdatesChannel("qbank:questions"))
}
