package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/exstem-practice/internal/model"
)

var questionColumns = []string{
	"position", "id", "id_numeric", "type", "question", "options", "answer", "weight", "explanation", "image",
}

// PostgresBankSource reads the bank from the questions table.
type PostgresBankSource struct {
	pool *pgxpool.Pool
}

// NewPostgresBankSource creates a new PostgresBankSource.
func NewPostgresBankSource(pool *pgxpool.Pool) *PostgresBankSource {
	return &PostgresBankSource{pool: pool}
}

// Load retrieves all questions ordered by bank position.
func (s *PostgresBankSource) Load(ctx context.Context) ([]model.RawQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT position, id, id_numeric, type, question, options, answer, weight, explanation, image
		 FROM questions
		 ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []model.RawQuestion
	for rows.Next() {
		var r questionRow
		if err := rows.Scan(&r.Position, &r.ID, &r.IDNumeric, &r.Type, &r.Question, &r.Options, &r.Answer, &r.Weight, &r.Explanation, &r.Image); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, r.raw())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: questions table is empty", ErrBankNotFound)
	}
	return out, nil
}

// ReplaceAll swaps the whole table contents for questions in one transaction.
func (s *PostgresBankSource) ReplaceAll(ctx context.Context, questions []model.Question) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}

		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"questions"},
			questionColumns,
			pgx.CopyFromSlice(len(questions), func(i int) ([]interface{}, error) {
				r := newQuestionRow(i+1, questions[i])
				return []interface{}{r.Position, r.ID, r.IDNumeric, r.Type, r.Question, r.Options, r.Answer, r.Weight, r.Explanation, r.Image}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy questions: %w", err)
		}
		return nil
	})
}
