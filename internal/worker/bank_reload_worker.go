package worker

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BankLoader reloads the question bank from its source.
type BankLoader interface {
	Load(ctx context.Context) error
}

// BankSubscriber announces bank replacements.
type BankSubscriber interface {
	Subscribe(ctx context.Context) *redis.PubSub
}

// BankReloadWorker reloads the bank whenever the redis document is
// replaced by the seeding command. A running session keeps the questions
// it was started with.
type BankReloadWorker struct {
	bank BankLoader
	src  BankSubscriber
	log  zerolog.Logger
}

func NewBankReloadWorker(bank BankLoader, src BankSubscriber, log zerolog.Logger) *BankReloadWorker {
	return &BankReloadWorker{
		bank: bank,
		src:  src,
		log:  log.With().Str("component", "bank_reload_worker").Logger(),
	}
}

// Start listens until ctx is cancelled. Call in a goroutine.
func (w *BankReloadWorker) Start(ctx context.Context) {
	pubsub := w.src.Subscribe(ctx)
	defer pubsub.Close()

	w.log.Info().Msg("BankReloadWorker started")
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("BankReloadWorker stopped")
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			w.log.Info().Str("count", msg.Payload).Msg("Bank replaced, reloading")
			if err := w.bank.Load(ctx); err != nil && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("Bank reload failed, keeping previous bank")
			}
		}
	}
}
