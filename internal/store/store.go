// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/digita/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for finished attempts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Deliveries run on background goroutines; one writer avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			text_id INTEGER NOT NULL,
			reference TEXT NOT NULL,
			typed TEXT NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			reason TEXT NOT NULL,
			participant_name TEXT NOT NULL,
			participant_email TEXT NOT NULL,
			participant_id TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_errors (
			attempt_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			error TEXT NOT NULL,
			suggestion TEXT NOT NULL,
			context TEXT NOT NULL,
			PRIMARY KEY (attempt_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_errors_kind ON attempt_errors(kind);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores a finished attempt and its errors in emission order.
func (s *Store) InsertAttempt(ctx context.Context, sub model.Submission) (err error) {
	a := sub.Attempt
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, session_id, started_at, ended_at, mode, difficulty, text_id, reference, typed,
			elapsed_seconds, wpm, accuracy, reason, participant_name, participant_email, participant_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		sub.SessionID,
		formatTime(a.StartedAt),
		formatTime(a.EndedAt),
		string(a.Mode),
		string(a.Difficulty),
		a.Reference.ID,
		a.Reference.Body,
		a.TypedText,
		a.ElapsedSeconds,
		a.WPM,
		a.Accuracy,
		string(a.Reason),
		sub.User.Name,
		sub.User.Email,
		sub.User.Identifier(),
	)
	if err != nil {
		return err
	}

	if len(a.Errors) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO attempt_errors (attempt_id, seq, kind, position, error, suggestion, context)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, e := range a.Errors {
			if _, err = stmt.ExecContext(ctx, a.ID, i, string(e.Kind), e.Position, e.Error, e.Suggestion, e.Context); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListAttempts returns attempt aggregates filtered by stats config, oldest first.
// Last keeps only the most recent attempts.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "a.mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Difficulty != "" {
		clauses = append(clauses, "a.difficulty = ?")
		args = append(args, cfg.Difficulty)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "a.ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id, session_id, ended_at, mode, difficulty, wpm, accuracy, elapsed_seconds, error_count
		FROM (
			SELECT a.id, a.session_id, a.ended_at, a.mode, a.difficulty, a.wpm, a.accuracy, a.elapsed_seconds,
				(SELECT COUNT(*) FROM attempt_errors e WHERE e.attempt_id = a.id) AS error_count
			FROM attempts a
			WHERE %s
			ORDER BY a.ended_at DESC
			LIMIT ?
		)
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var endedAt, mode, difficulty string
		if err := rows.Scan(&agg.AttemptID, &agg.SessionID, &endedAt, &mode, &difficulty,
			&agg.WPM, &agg.Accuracy, &agg.ElapsedSeconds, &agg.ErrorCount); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Mode = model.Mode(mode)
		agg.Difficulty = model.Difficulty(difficulty)
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// ErrorSummary counts errors per kind across attempts. Every kind is present.
func (s *Store) ErrorSummary(ctx context.Context, attemptIDs []string) (map[model.ErrorKind]int, error) {
	summary := make(map[model.ErrorKind]int, len(model.ErrorKinds))
	for _, k := range model.ErrorKinds {
		summary[k] = 0
	}
	if len(attemptIDs) == 0 {
		return summary, nil
	}
	placeholders := make([]string, len(attemptIDs))
	args := make([]any, len(attemptIDs))
	for i, id := range attemptIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT kind, COUNT(*) FROM attempt_errors
		WHERE attempt_id IN (%s)
		GROUP BY kind`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		summary[model.ErrorKind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}

// AttemptErrors returns the errors of one attempt in emission order.
func (s *Store) AttemptErrors(ctx context.Context, attemptID string) ([]model.TextError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, position, error, suggestion, context FROM attempt_errors
		WHERE attempt_id = ?
		ORDER BY seq ASC`, attemptID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var errs []model.TextError
	for rows.Next() {
		var e model.TextError
		var kind string
		if err := rows.Scan(&kind, &e.Position, &e.Error, &e.Suggestion, &e.Context); err != nil {
			return nil, err
		}
		e.Kind = model.ErrorKind(kind)
		errs = append(errs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return errs, nil
}

// timeLayout is fixed width so stored timestamps order correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
