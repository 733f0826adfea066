package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/stemsi/exstem-practice/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS questions (
  position    INTEGER PRIMARY KEY,
  id          TEXT NOT NULL UNIQUE,
  id_numeric  INTEGER NOT NULL DEFAULT 0,
  type        TEXT NOT NULL,
  question    TEXT NOT NULL,
  options     TEXT NOT NULL, -- JSON array of strings
  answer      TEXT NOT NULL, -- JSON array of 1-based indices
  weight      REAL NOT NULL DEFAULT 1,
  explanation TEXT NOT NULL DEFAULT '',
  image       TEXT NOT NULL DEFAULT ''
);
`

// SQLiteBankSource reads the bank from a local SQLite file. Option and
// answer lists are stored as JSON text.
type SQLiteBankSource struct {
	db *sql.DB
}

// NewSQLiteBankSource creates a new SQLiteBankSource.
func NewSQLiteBankSource(db *sql.DB) *SQLiteBankSource {
	return &SQLiteBankSource{db: db}
}

// EnsureSchema creates the questions table if it does not exist.
func (s *SQLiteBankSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}
	return nil
}

// Load retrieves all questions ordered by bank position.
func (s *SQLiteBankSource) Load(ctx context.Context) ([]model.RawQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
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
		var (
			r               questionRow
			options, answer string
		)
		if err := rows.Scan(&r.Position, &r.ID, &r.IDNumeric, &r.Type, &r.Question, &options, &answer, &r.Weight, &r.Explanation, &r.Image); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &r.Options); err != nil {
			return nil, fmt.Errorf("question %s options: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(answer), &r.Answer); err != nil {
			return nil, fmt.Errorf("question %s answer: %w", r.ID, err)
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
func (s *SQLiteBankSource) ReplaceAll(ctx context.Context, questions []model.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (position, id, id_numeric, type, question, options, answer, weight, explanation, image)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range questions {
		r := newQuestionRow(i+1, q)
		options, err := json.Marshal(r.Options)
		if err != nil {
			return err
		}
		answer, err := json.Marshal(r.Answer)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.Position, r.ID, r.IDNumeric, r.Type, r.Question, string(options), string(answer), r.Weight, r.Explanation, r.Image); err != nil {
			return fmt.Errorf("insert question %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}
