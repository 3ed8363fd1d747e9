package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/bartekus/habits/internal/habit"
)

// timeLayout is fixed-width UTC so that text ordering matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS habits (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	name TEXT UNIQUE NOT NULL,
	periodicity TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS completions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	habit_id TEXT NOT NULL REFERENCES habits(id),
	completed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_completions_habit ON completions(habit_id, completed_at);
`

// SQLiteStore keeps habits in a local SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// A single connection keeps :memory: databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, log: log}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("Opened sqlite store", zap.String("path", path))
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateHabit(ctx context.Context, h habit.Habit) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.insertHabit(ctx, tx, h)
	})
}

func (s *SQLiteStore) AddCompletion(ctx context.Context, habitID string, at time.Time) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.insertCompletion(ctx, tx, habitID, at)
	})
}

// Import writes every habit and its completions in one transaction.
func (s *SQLiteStore) Import(ctx context.Context, batch []habit.Tracked) error {
	s.log.Debug("Importing habits", zap.Int("habits", len(batch)))

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, t := range batch {
			if err := s.insertHabit(ctx, tx, t.Habit); err != nil {
				return err
			}
			for _, at := range t.Completions {
				if err := s.insertCompletion(ctx, tx, t.Habit.ID, at); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *SQLiteStore) insertHabit(ctx context.Context, tx *sql.Tx, h habit.Habit) error {
	s.log.Debug("Inserting habit",
		zap.String("id", h.ID),
		zap.String("name", h.Name),
		zap.String("periodicity", string(h.Periodicity)),
	)

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM habits WHERE name = ?)", h.Name).Scan(&exists); err != nil {
		return fmt.Errorf("checking habit name: %w", err)
	}
	if exists {
		return duplicate(h.Name)
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO habits (id, name, periodicity, description, created_at) VALUES (?, ?, ?, ?, ?)",
		h.ID, h.Name, string(h.Periodicity), h.Description, formatTime(h.CreatedAt),
	)
	if err != nil {
		s.log.Error("Failed to insert habit", zap.Error(err))
		return fmt.Errorf("inserting habit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) insertCompletion(ctx context.Context, tx *sql.Tx, habitID string, at time.Time) error {
	s.log.Debug("Inserting completion", zap.String("habit_id", habitID), zap.Time("completed_at", at))

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM habits WHERE id = ?)", habitID).Scan(&exists); err != nil {
		return fmt.Errorf("checking habit: %w", err)
	}
	if !exists {
		return notFound(habitID)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO completions (habit_id, completed_at) VALUES (?, ?)",
		habitID, formatTime(at),
	); err != nil {
		s.log.Error("Failed to insert completion", zap.Error(err))
		return fmt.Errorf("inserting completion: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Habit(ctx context.Context, id string) (habit.Habit, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, periodicity, description, created_at FROM habits WHERE id = ?", id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return habit.Habit{}, notFound(id)
	}
	return h, err
}

func (s *SQLiteStore) Habits(ctx context.Context) ([]habit.Habit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, periodicity, description, created_at FROM habits ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	habits := []habit.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *SQLiteStore) Completions(ctx context.Context, habitID string) ([]time.Time, error) {
	if _, err := s.Habit(ctx, habitID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT completed_at FROM completions WHERE habit_id = ? ORDER BY completed_at, id", habitID)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []time.Time{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		t, err := parseTime(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Snapshot(ctx context.Context) ([]habit.Tracked, error) {
	habits, err := s.Habits(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT habit_id, completed_at FROM completions ORDER BY completed_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byHabit := make(map[string][]time.Time, len(habits))
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		t, err := parseTime(raw)
		if err != nil {
			return nil, err
		}
		byHabit[id] = append(byHabit[id], t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]habit.Tracked, 0, len(habits))
	for _, h := range habits {
		out = append(out, habit.Tracked{Habit: h, Completions: byHabit[h.ID]})
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (habit.Habit, error) {
	var h habit.Habit
	var periodicity, created string
	if err := row.Scan(&h.ID, &h.Name, &periodicity, &h.Description, &created); err != nil {
		return habit.Habit{}, err
	}
	h.Periodicity = habit.Periodicity(periodicity)
	t, err := parseTime(created)
	if err != nil {
		return habit.Habit{}, err
	}
	h.CreatedAt = t
	return h, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", raw, err)
	}
	return t, nil
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
