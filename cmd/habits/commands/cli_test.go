package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/habit"
	"github.com/bartekus/habits/internal/seed"
	"github.com/bartekus/habits/internal/stats"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	t    *testing.T
	args []string
}

// newHarness isolates config lookup and data files in a temp directory.
func newHarness(t *testing.T, driver string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("HABITS_CLOCK_TIMEZONE", "UTC")
	t.Chdir(dir)

	name := "habits.db"
	if driver == "json" {
		name = "habits.json"
	}
	return &harness{
		t:    t,
		args: []string{"--driver", driver, "--db", filepath.Join(dir, name), "--no-color"},
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(append([]string{}, h.args...), args...))
	err := cmd.ExecuteContext(app.WithClock(context.Background(), func() time.Time { return testNow }))
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "habits %v", args)
	return out
}

func (h *harness) create(name, periodicity string) habit.Habit {
	h.t.Helper()
	var created habit.Habit
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("create", name, periodicity, "-o", "json")), &created))
	return created
}

func TestRootHelp(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	out := b.String()
	for _, c := range []string{"create", "complete", "list", "view", "stats", "seed", "report", "version"} {
		assert.Contains(t, out, c, "expected top-level command %q in root help", c)
	}
}

func TestVersion(t *testing.T) {
	t.Setenv("HABITS_VERSION", "1.2.3")
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "habits version 1.2.3\n", b.String())
}

func TestCreate(t *testing.T) {
	h := newHarness(t, "sqlite")

	out := h.mustRun("create", "Walk the cat", "daily", "--description", "Around the block")
	assert.Contains(t, out, "Created habit: Walk the cat (ID: ")

	created := h.create("Yoga", " Weekly ")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, habit.Weekly, created.Periodicity)
	assert.True(t, created.CreatedAt.Equal(testNow))
}

func TestCreate_Errors(t *testing.T) {
	h := newHarness(t, "sqlite")
	h.create("Walk the cat", "daily")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantMsg  string
	}{
		{"unknown periodicity", []string{"create", "Read", "hourly"}, clierr.ExitUnknownPeriodicity, `"hourly"`},
		{"empty name", []string{"create", "  ", "daily"}, clierr.ExitInvalidInput, "name"},
		{"duplicate", []string{"create", "Walk the cat", "weekly"}, clierr.ExitInvalidInput, "Walk the cat"},
		{"missing args", []string{"create", "Read"}, clierr.ExitUsage, "usage"},
		{"unknown flag", []string{"create", "Read", "daily", "--bogus"}, clierr.ExitUsage, "bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, clierr.ExitCodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestComplete(t *testing.T) {
	h := newHarness(t, "sqlite")
	walk := h.create("Walk the cat", "daily")

	out := h.mustRun("complete", walk.ID)
	assert.Equal(t, "Completed Walk the cat at 2024-03-10 12:00\n", out)

	out = h.mustRun("complete", walk.ID, "--at", "2024-03-09T07:30:00Z")
	assert.Equal(t, "Completed Walk the cat at 2024-03-09 07:30\n", out)

	_, err := h.run("complete", "no-such-id")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitHabitNotFound, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "no-such-id")

	_, err = h.run("complete", walk.ID, "--at", "2024-03-11")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitInvalidReferenceTime, clierr.ExitCodeOf(err))

	_, err = h.run("complete", walk.ID, "--at", "last tuesday")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitInvalidReferenceTime, clierr.ExitCodeOf(err))
}

func TestStatsWorkflow(t *testing.T) {
	for _, driver := range []string{"sqlite", "json"} {
		t.Run(driver, func(t *testing.T) {
			h := newHarness(t, driver)
			walk := h.create("Walk the cat", "daily")
			yoga := h.create("Yoga", "weekly")
			h.create("Read", "daily")

			for _, day := range []string{"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-09", "2024-03-10"} {
				h.mustRun("complete", walk.ID, "--at", day)
			}
			// ISO weeks 9 and 10 of 2024.
			h.mustRun("complete", yoga.ID, "--at", "2024-02-27")
			h.mustRun("complete", yoga.ID, "--at", "2024-03-04")

			var rows []stats.Row
			require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "all", "-o", "json")), &rows))
			require.Len(t, rows, 3)
			assert.Equal(t, []string{"Walk the cat", "Yoga", "Read"}, names(rows))
			assert.Equal(t, 2, rows[0].Streak.Current)
			assert.Equal(t, 3, rows[0].Streak.Longest)
			assert.Equal(t, 1, rows[0].Streak.Breaks)
			assert.Equal(t, 2, rows[1].Streak.Current)
			assert.False(t, rows[2].Streak.Broken)

			require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "longest-streaks", "-o", "json")), &rows))
			assert.Equal(t, []string{"Walk the cat", "Yoga", "Read"}, names(rows))

			require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "periodicity", "WEEKLY", "-o", "json")), &rows))
			assert.Equal(t, []string{"Yoga"}, names(rows))

			var summary stats.Summary
			require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "habit", walk.ID, "-o", "json")), &summary))
			assert.Equal(t, walk.ID, summary.Habit.ID)
			assert.Equal(t, 5, summary.TotalCompletions)
			assert.Equal(t, 2, summary.Streak.Current)

			// A week later both streaks have lapsed.
			require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "all", "--as-of", "2024-03-20", "-o", "json")), &rows))
			assert.Equal(t, 0, rows[0].Streak.Current)
			assert.True(t, rows[0].Streak.Broken)
			assert.Equal(t, 0, rows[1].Streak.Current)
		})
	}
}

func TestStats_Errors(t *testing.T) {
	h := newHarness(t, "sqlite")
	walk := h.create("Walk the cat", "daily")
	h.mustRun("complete", walk.ID, "--at", "2024-03-08")

	_, err := h.run("stats", "periodicity", "hourly")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitUnknownPeriodicity, clierr.ExitCodeOf(err))

	_, err = h.run("stats", "habit", "missing")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitHabitNotFound, clierr.ExitCodeOf(err))

	_, err = h.run("stats", "all", "--as-of", "2024-03-01")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitInvalidReferenceTime, clierr.ExitCodeOf(err))

	_, err = h.run("stats", "habit")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
}

func TestStats_EmptyPeriodicity(t *testing.T) {
	h := newHarness(t, "sqlite")
	h.create("Walk the cat", "daily")

	assert.Equal(t, "[]\n", h.mustRun("stats", "periodicity", "weekly", "-o", "json"))

	out := h.mustRun("stats", "periodicity", "weekly")
	assert.Contains(t, out, "Habits with periodicity weekly")
	assert.Contains(t, out, "No habits found.")
}

func TestList(t *testing.T) {
	h := newHarness(t, "sqlite")
	assert.Equal(t, "No habits found.\n", h.mustRun("list"))

	h.create("Walk the cat", "daily")
	h.create("Yoga", "weekly")

	out := h.mustRun("list")
	assert.Contains(t, out, "Walk the cat")
	assert.Contains(t, out, "Yoga")
	assert.Contains(t, out, "Total: 2 habits")

	var rows []stats.Row
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("list", "--periodicity", "weekly", "-o", "json")), &rows))
	assert.Equal(t, []string{"Yoga"}, names(rows))

	_, err := h.run("list", "-p", "monthly")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitUnknownPeriodicity, clierr.ExitCodeOf(err))
}

func TestView(t *testing.T) {
	h := newHarness(t, "sqlite")
	walk := h.create("Walk the cat", "daily")

	out := h.mustRun("view", walk.ID)
	assert.Contains(t, out, "Walk the cat")
	assert.Contains(t, out, "Completions:\n  (none)\n")

	h.mustRun("complete", walk.ID, "--at", "2024-03-09T07:30:00Z")
	out = h.mustRun("view", walk.ID)
	assert.Contains(t, out, "  2024-03-09 07:30\n")
	assert.Contains(t, out, "Current streak:  1 day")

	_, err := h.run("view", "missing")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitHabitNotFound, clierr.ExitCodeOf(err))
}

func TestSeedAndReport(t *testing.T) {
	h := newHarness(t, "sqlite")

	var results []seed.Result
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("seed", "--rand-seed", "7", "-o", "json")), &results))
	require.NotEmpty(t, results)

	var rows []stats.Row
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "all", "-o", "json")), &rows))
	assert.Len(t, rows, len(results))

	_, err := h.run("seed", "--rand-seed", "7")
	require.Error(t, err, "seeding twice creates duplicate names")
	assert.Equal(t, clierr.ExitInvalidInput, clierr.ExitCodeOf(err))

	out := h.mustRun("report")
	assert.Contains(t, out, "# Habit Report")
	assert.Contains(t, out, "Reference time: 2024-03-10T12:00:00Z")
	assert.Contains(t, out, results[0].Habit.Name)

	path := filepath.Join(t.TempDir(), "reports", "habits.md")
	assert.Equal(t, "Report written to "+path+"\n", h.mustRun("report", "--out", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestSeed_BadFile(t *testing.T) {
	h := newHarness(t, "sqlite")
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("habits:\n  - name: Nap\n    periodicity: hourly\n"), 0o600))

	_, err := h.run("seed", "--file", path)
	require.Error(t, err)
	assert.Equal(t, clierr.ExitInvalidInput, clierr.ExitCodeOf(err))
}

func TestSeed_RejectedRunWritesNothing(t *testing.T) {
	h := newHarness(t, "sqlite")
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`habits:
  - name: A
    periodicity: daily
    completion_rate: 1
  - name: A
    periodicity: weekly
    completion_rate: 1
`), 0o600))

	_, err := h.run("seed", "--file", path, "--rand-seed", "1")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitInvalidInput, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), `"A"`)

	_, err = h.run("seed", "--days", "0")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "--days must be positive")

	assert.Equal(t, "No habits found.\n", h.mustRun("list"))
}

func names(rows []stats.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Habit.Name)
	}
	return out
}
