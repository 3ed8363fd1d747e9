package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/bartekus/habits/internal/fsutil"
	"github.com/bartekus/habits/internal/habit"
)

// document is the on-disk shape of the JSON store.
type document struct {
	Habits      []habit.Habit      `json:"habits"`
	Completions []habit.Completion `json:"completions"`
}

// JSONStore keeps habits in a single JSON document. Every write rewrites the
// whole file atomically.
type JSONStore struct {
	path string
	log  *zap.Logger
}

// OpenJSON creates a store backed by the JSON file at path. The file is created on first write.
func OpenJSON(path string, log *zap.Logger) *JSONStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONStore{path: path, log: log}
}

func (s *JSONStore) read() (*document, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return &document{}, nil // Not found is clean state
	}
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding data file %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *JSONStore) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding data file: %w", err)
	}
	return fsutil.AtomicWrite(s.path, append(data, '\n'), 0o600)
}

func (s *JSONStore) CreateHabit(_ context.Context, h habit.Habit) error {
	s.log.Debug("Inserting habit", zap.String("id", h.ID), zap.String("name", h.Name))

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := doc.addHabit(h); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *JSONStore) AddCompletion(_ context.Context, habitID string, at time.Time) error {
	s.log.Debug("Inserting completion", zap.String("habit_id", habitID), zap.Time("completed_at", at))

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := doc.addCompletion(habitID, at); err != nil {
		return err
	}
	return s.write(doc)
}

// Import applies the whole batch to the document and writes it once.
func (s *JSONStore) Import(_ context.Context, batch []habit.Tracked) error {
	s.log.Debug("Importing habits", zap.Int("habits", len(batch)))

	doc, err := s.read()
	if err != nil {
		return err
	}
	for _, t := range batch {
		if err := doc.addHabit(t.Habit); err != nil {
			return err
		}
		for _, at := range t.Completions {
			if err := doc.addCompletion(t.Habit.ID, at); err != nil {
				return err
			}
		}
	}
	return s.write(doc)
}

func (s *JSONStore) Habit(_ context.Context, id string) (habit.Habit, error) {
	doc, err := s.read()
	if err != nil {
		return habit.Habit{}, err
	}
	for _, h := range doc.Habits {
		if h.ID == id {
			return h, nil
		}
	}
	return habit.Habit{}, notFound(id)
}

func (s *JSONStore) Habits(_ context.Context) ([]habit.Habit, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if doc.Habits == nil {
		return []habit.Habit{}, nil
	}
	return doc.Habits, nil
}

func (s *JSONStore) Completions(ctx context.Context, habitID string) ([]time.Time, error) {
	if _, err := s.Habit(ctx, habitID); err != nil {
		return nil, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return completionsOf(doc, habitID), nil
}

func (s *JSONStore) Snapshot(_ context.Context) ([]habit.Tracked, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]habit.Tracked, 0, len(doc.Habits))
	for _, h := range doc.Habits {
		out = append(out, habit.Tracked{Habit: h, Completions: completionsOf(doc, h.ID)})
	}
	return out, nil
}

func (s *JSONStore) Close() error { return nil }

func completionsOf(doc *document, habitID string) []time.Time {
	out := []time.Time{}
	for _, c := range doc.Completions {
		if c.HabitID == habitID {
			out = append(out, c.CompletedAt)
		}
	}
	slices.SortStableFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

func (d *document) addHabit(h habit.Habit) error {
	for _, existing := range d.Habits {
		if existing.Name == h.Name {
			return duplicate(h.Name)
		}
		if existing.ID == h.ID {
			return fmt.Errorf("%w: habit id %q already exists", habit.ErrDuplicateHabit, h.ID)
		}
	}
	d.Habits = append(d.Habits, h)
	return nil
}

func (d *document) addCompletion(habitID string, at time.Time) error {
	if !slices.ContainsFunc(d.Habits, func(h habit.Habit) bool { return h.ID == habitID }) {
		return notFound(habitID)
	}
	d.Completions = append(d.Completions, habit.Completion{HabitID: habitID, CompletedAt: at})
	return nil
}
