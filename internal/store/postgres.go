package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple services.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 739184650

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			task TEXT NOT NULL,
			level TEXT,
			num_cards INT,
			input_chars INT,
			status TEXT,
			error TEXT,
			summary TEXT,
			highlights TEXT[],
			adapted TEXT,
			complexity REAL,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS flashcards (
			run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
			ord INT,
			question TEXT,
			answer TEXT,
			PRIMARY KEY (run_id, ord)
		);`,
		`CREATE INDEX IF NOT EXISTS runs_created_at_idx ON runs (created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = StatusProcessing
	}
	run.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, task, level, num_cards, input_chars, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Task, run.Level, run.NumCards, run.InputChars, run.Status, run.CreatedAt,
	)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var run Run
	var level, errMsg, summary, adapted sql.NullString
	var complexity sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, task, level, num_cards, input_chars, status, error, summary, highlights, adapted, complexity, created_at
		 FROM runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.Task, &level, &run.NumCards, &run.InputChars, &run.Status,
		&errMsg, &summary, pq.Array(&run.Highlights), &adapted, &complexity, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, err
	}
	run.Level = level.String
	run.Error = errMsg.String
	run.Summary = summary.String
	run.Adapted = adapted.String
	run.Complexity = complexity.Float64
	return run, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = $2, error = $3 WHERE id = $1`,
		id, status, errMsg,
	)
	return err
}

func (s *PostgresStore) SaveSummary(ctx context.Context, id uuid.UUID, summary string, highlights []string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET summary = $2, highlights = $3 WHERE id = $1`,
		id, summary, pq.Array(highlights),
	)
	return err
}

func (s *PostgresStore) SaveAdaptation(ctx context.Context, id uuid.UUID, adapted string, complexity float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET adapted = $2, complexity = $3 WHERE id = $1`,
		id, adapted, complexity,
	)
	return err
}

func (s *PostgresStore) SaveCards(ctx context.Context, id uuid.UUID, cards []Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, c := range cards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flashcards (run_id, ord, question, answer) VALUES ($1, $2, $3, $4)`,
			id, i, c.Question, c.Answer,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListCards(ctx context.Context, id uuid.UUID) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, ord, question, answer FROM flashcards WHERE run_id = $1 ORDER BY ord`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.RunID, &c.Ord, &c.Question, &c.Answer); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
