package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bartekus/habits/internal/habit"
)

var created = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	sqliteStore, err := Open(ctx, DriverSQLite, filepath.Join(dir, "db", "habits.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	jsonStore, err := Open(ctx, DriverJSON, filepath.Join(dir, "json", "habits.json"), log)
	require.NoError(t, err)

	return map[string]Store{DriverSQLite: sqliteStore, DriverJSON: jsonStore}
}

func mustHabit(t *testing.T, name string, p habit.Periodicity) habit.Habit {
	t.Helper()
	h, err := habit.New(name, string(p), "desc "+name, created)
	require.NoError(t, err)
	return h
}

func TestStore_CreateAndList(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.Habits(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			walk := mustHabit(t, "Walk the cat", habit.Daily)
			yoga := mustHabit(t, "Yoga", habit.Weekly)
			read := mustHabit(t, "Read", habit.Daily)
			for _, h := range []habit.Habit{walk, yoga, read} {
				require.NoError(t, s.CreateHabit(ctx, h))
			}

			habits, err := s.Habits(ctx)
			require.NoError(t, err)
			require.Len(t, habits, 3)
			assert.Equal(t, []string{walk.ID, yoga.ID, read.ID},
				[]string{habits[0].ID, habits[1].ID, habits[2].ID}, "insertion order")

			got, err := s.Habit(ctx, yoga.ID)
			require.NoError(t, err)
			assert.Equal(t, yoga.Name, got.Name)
			assert.Equal(t, habit.Weekly, got.Periodicity)
			assert.Equal(t, "desc Yoga", got.Description)
			assert.True(t, created.Equal(got.CreatedAt))
		})
	}
}

func TestStore_DuplicateName(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.CreateHabit(ctx, mustHabit(t, "Yoga", habit.Weekly)))

			err := s.CreateHabit(ctx, mustHabit(t, "Yoga", habit.Daily))
			require.ErrorIs(t, err, habit.ErrDuplicateHabit)
			assert.Contains(t, err.Error(), `"Yoga"`)
		})
	}
}

func TestStore_Completions(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			h := mustHabit(t, "Read", habit.Daily)
			other := mustHabit(t, "Walk", habit.Daily)
			require.NoError(t, s.CreateHabit(ctx, h))
			require.NoError(t, s.CreateHabit(ctx, other))

			later := created.Add(48 * time.Hour)
			earlier := created.Add(24 * time.Hour)
			offset := time.FixedZone("CET", 60*60)
			require.NoError(t, s.AddCompletion(ctx, h.ID, later))
			require.NoError(t, s.AddCompletion(ctx, h.ID, earlier.In(offset)))
			require.NoError(t, s.AddCompletion(ctx, h.ID, earlier.In(offset)))
			require.NoError(t, s.AddCompletion(ctx, other.ID, created))

			got, err := s.Completions(ctx, h.ID)
			require.NoError(t, err)
			require.Len(t, got, 3, "duplicates are kept by the store")
			assert.True(t, earlier.Equal(got[0]))
			assert.True(t, earlier.Equal(got[1]))
			assert.True(t, later.Equal(got[2]))

			snap, err := s.Snapshot(ctx)
			require.NoError(t, err)
			require.Len(t, snap, 2)
			assert.Equal(t, h.ID, snap[0].Habit.ID)
			assert.Len(t, snap[0].Completions, 3)
			assert.Len(t, snap[1].Completions, 1)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := s.AddCompletion(ctx, "missing", created)
			require.ErrorIs(t, err, habit.ErrHabitNotFound)

			_, err = s.Habit(ctx, "missing")
			require.ErrorIs(t, err, habit.ErrHabitNotFound)
			assert.Contains(t, err.Error(), `"missing"`)

			_, err = s.Completions(ctx, "missing")
			require.ErrorIs(t, err, habit.ErrHabitNotFound)
		})
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for _, driver := range []string{DriverSQLite, DriverJSON} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(dir, "habits."+driver)
			h := mustHabit(t, "Meditation", habit.Daily)

			s, err := Open(ctx, driver, path, nil)
			require.NoError(t, err)
			require.NoError(t, s.CreateHabit(ctx, h))
			require.NoError(t, s.AddCompletion(ctx, h.ID, created.Add(time.Hour)))
			require.NoError(t, s.Close())

			reopened, err := Open(ctx, driver, path, nil)
			require.NoError(t, err)
			defer func() { _ = reopened.Close() }()

			snap, err := reopened.Snapshot(ctx)
			require.NoError(t, err)
			require.Len(t, snap, 1)
			assert.Equal(t, h.Name, snap[0].Habit.Name)
			assert.Len(t, snap[0].Completions, 1)
		})
	}
}

func TestStore_Import(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			walk := mustHabit(t, "Walk the cat", habit.Daily)
			yoga := mustHabit(t, "Yoga", habit.Weekly)

			require.NoError(t, s.Import(ctx, []habit.Tracked{
				{Habit: walk, Completions: []time.Time{created.Add(time.Hour), created.Add(25 * time.Hour)}},
				{Habit: yoga},
			}))

			snap, err := s.Snapshot(ctx)
			require.NoError(t, err)
			require.Len(t, snap, 2)
			assert.Equal(t, walk.ID, snap[0].Habit.ID)
			assert.Len(t, snap[0].Completions, 2)
			assert.Empty(t, snap[1].Completions)
		})
	}
}

func TestStore_ImportIsAllOrNothing(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := mustHabit(t, "A", habit.Daily)
			second := mustHabit(t, "A", habit.Weekly)

			err := s.Import(ctx, []habit.Tracked{
				{Habit: first, Completions: []time.Time{created, created.Add(24 * time.Hour)}},
				{Habit: second, Completions: []time.Time{created}},
			})
			require.ErrorIs(t, err, habit.ErrDuplicateHabit)

			snap, err := s.Snapshot(ctx)
			require.NoError(t, err)
			assert.Empty(t, snap, "failed import leaves no habits behind")

			existing := mustHabit(t, "Yoga", habit.Weekly)
			require.NoError(t, s.CreateHabit(ctx, existing))

			err = s.Import(ctx, []habit.Tracked{
				{Habit: mustHabit(t, "Read", habit.Daily), Completions: []time.Time{created}},
				{Habit: mustHabit(t, "Yoga", habit.Daily)},
			})
			require.ErrorIs(t, err, habit.ErrDuplicateHabit)

			snap, err = s.Snapshot(ctx)
			require.NoError(t, err)
			require.Len(t, snap, 1)
			assert.Equal(t, existing.ID, snap[0].Habit.ID)
			assert.Empty(t, snap[0].Completions)
		})
	}
}

func TestOpenSQLite_NilLogger(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "habits.db"), nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.CreateHabit(ctx, mustHabit(t, "Read", habit.Daily)))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "x", nil)
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenJSON(path, nil).Habits(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding data file")
}
