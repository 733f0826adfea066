package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-practice/internal/engine"
	"github.com/stemsi/exstem-practice/internal/model"
	"github.com/stemsi/exstem-practice/internal/qbank"
	"github.com/stemsi/exstem-practice/internal/repository"
)

// ErrBankEmpty is returned when a source yields no questions.
var ErrBankEmpty = errors.New("question bank is empty")

// BankService holds the normalized question bank.
type BankService struct {
	source repository.BankSource
	log    zerolog.Logger

	mu        sync.RWMutex
	questions []model.Question
	loadedAt  time.Time
}

// NewBankService creates a new BankService. Call Load before use.
func NewBankService(source repository.BankSource, log zerolog.Logger) *BankService {
	return &BankService{
		source: source,
		log:    log.With().Str("component", "bank_service").Logger(),
	}
}

// Load reads and normalizes the bank from the source. On failure the
// previously loaded bank, if any, stays in place.
func (s *BankService) Load(ctx context.Context) error {
	raw, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bank: %w", err)
	}

	questions, err := qbank.Normalize(raw)
	if err != nil {
		for _, ve := range qbank.ValidationErrors(err) {
			s.log.Error().
				Int("record", ve.Index+1).
				Str("id", ve.ID).
				Interface("fields", ve.Fields).
				Msg("Invalid question record")
		}
		return fmt.Errorf("normalize bank: %w", err)
	}
	if len(questions) == 0 {
		return ErrBankEmpty
	}

	s.mu.Lock()
	s.questions = questions
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.log.Info().Int("questions", len(questions)).Msg("Question bank loaded")
	return nil
}

// Questions returns the normalized bank. The slice must not be modified.
func (s *BankService) Questions() []model.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions
}

func (s *BankService) Len() int {
	return len(s.Questions())
}

func (s *BankService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Preview lists every question with canonical option and answer labels.
func (s *BankService) Preview() []qbank.PreviewItem {
	return qbank.Preview(s.Questions(), 1)
}

// Weighted lists the heavier-than-default questions of a 1-based inclusive
// range; zero bounds mean the whole bank.
func (s *BankService) Weighted(rangeStart, rangeEnd int) ([]qbank.WeightedItem, error) {
	bank := s.Questions()
	if len(bank) == 0 {
		return nil, ErrBankEmpty
	}
	start, end, err := engine.ResolveRange(rangeStart, rangeEnd, len(bank))
	if err != nil {
		return nil, err
	}
	return qbank.Weighted(engine.Pool(bank, start, end), start), nil
}

// Export renders the canonical JSON form of the bank.
func (s *BankService) Export() ([]byte, error) {
	bank := s.Questions()
	if len(bank) == 0 {
		return nil, ErrBankEmpty
	}
	return qbank.Export(bank)
}
