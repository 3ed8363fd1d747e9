// Package render formats habits and statistics for the terminal or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bartekus/habits/internal/habit"
	"github.com/bartekus/habits/internal/seed"
	"github.com/bartekus/habits/internal/stats"
	"github.com/bartekus/habits/internal/streak"
)

const (
	statusActive = "active"
	statusBroken = "broken"
	statusNew    = "not started"
)

const dateTimeLayout = "2006-01-02 15:04"

// Renderer writes command output. Times are shown in Now's location and
// relative times are measured against Now.
type Renderer struct {
	Out   io.Writer
	JSON  bool
	Color bool
	Now   time.Time

	title *cases.Caser
}

// New returns a renderer writing to out.
func New(out io.Writer, asJSON, useColor bool, now time.Time) *Renderer {
	title := cases.Title(language.English)
	return &Renderer{Out: out, JSON: asJSON, Color: useColor, Now: now, title: &title}
}

func (r *Renderer) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if !r.Color {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func (r *Renderer) label(p habit.Periodicity) string {
	if r.title == nil {
		return string(p)
	}
	return r.title.String(string(p))
}

// WriteJSON encodes v as indented JSON.
func (r *Renderer) WriteJSON(v any) error {
	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Created reports a newly created habit.
func (r *Renderer) Created(h habit.Habit) error {
	if r.JSON {
		return r.WriteJSON(h)
	}
	_, err := fmt.Fprintf(r.Out, "%s %s (ID: %s)\n", r.paint(color.FgGreen, "Created habit:"), h.Name, h.ID)
	return err
}

// Completed reports a recorded completion.
func (r *Renderer) Completed(h habit.Habit, at time.Time) error {
	if r.JSON {
		return r.WriteJSON(habit.Completion{HabitID: h.ID, CompletedAt: at})
	}
	_, err := fmt.Fprintf(r.Out, "%s %s at %s\n",
		r.paint(color.FgGreen, "Completed"), h.Name, at.In(r.Now.Location()).Format(dateTimeLayout))
	return err
}

// Habits renders the habit list with streak columns.
func (r *Renderer) Habits(rows []stats.Row) error {
	if r.JSON {
		return r.WriteJSON(rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.Out, "No habits found.")
		return err
	}

	tbl := r.newTable()
	tbl.AppendHeader(table.Row{"ID", "Name", "Periodicity", "Current", "Longest", "Created"})
	for _, row := range rows {
		tbl.AppendRow(table.Row{
			row.Habit.ID,
			row.Habit.Name,
			r.label(row.Habit.Periodicity),
			row.Streak.Current,
			row.Streak.Longest,
			row.Habit.CreatedAt.In(r.Now.Location()).Format(dateTimeLayout),
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d habits", len(rows))})
	_, err := fmt.Fprintln(r.Out, tbl.Render())
	return err
}

// Streaks renders ranked streak rows under a title.
func (r *Renderer) Streaks(title string, rows []stats.Row) error {
	if r.JSON {
		return r.WriteJSON(rows)
	}
	if _, err := fmt.Fprintln(r.Out, r.paint(color.Bold, title)); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.Out, "No habits found.")
		return err
	}

	tbl := r.newTable()
	tbl.AppendHeader(table.Row{"#", "Name", "Periodicity", "Current", "Longest", "Last Completed", "Status", "ID"})
	for i, row := range rows {
		tbl.AppendRow(table.Row{
			i + 1,
			row.Habit.Name,
			r.label(row.Habit.Periodicity),
			row.Streak.Current,
			row.Streak.Longest,
			r.lastCompleted(row.Streak),
			r.status(row.Streak),
			row.Habit.ID,
		})
	}
	_, err := fmt.Fprintln(r.Out, tbl.Render())
	return err
}

// Summary renders a single habit's analysis, optionally followed by its
// completion history.
func (r *Renderer) Summary(s stats.Summary, history []time.Time) error {
	if r.JSON {
		return r.WriteJSON(struct {
			stats.Summary
			History []time.Time `json:"history,omitempty"`
		}{s, history})
	}

	unit := s.Habit.Periodicity.Unit()
	lines := [][2]string{
		{"ID", s.Habit.ID},
		{"Name", s.Habit.Name},
		{"Periodicity", r.label(s.Habit.Periodicity)},
		{"Description", s.Habit.Description},
		{"Created at", s.Habit.CreatedAt.In(r.Now.Location()).Format(dateTimeLayout)},
		{"Current streak", english.Plural(s.Streak.Current, unit, "")},
		{"Longest streak", english.Plural(s.Streak.Longest, unit, "")},
		{"Status", r.status(s.Streak)},
		{"Last completed", r.lastCompleted(s.Streak)},
		{"Completions", strconv.Itoa(s.TotalCompletions)},
		{"Completion rate", fmt.Sprintf("%.1f%%", s.CompletionRate)},
		{"Breaks", strconv.Itoa(s.Streak.Breaks)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(r.Out, "%-16s %s\n", l[0]+":", l[1]); err != nil {
			return err
		}
	}

	if len(s.Suggestions) > 0 {
		if _, err := fmt.Fprintf(r.Out, "\n%s\n", r.paint(color.FgCyan, "Suggestions:")); err != nil {
			return err
		}
		for _, tip := range s.Suggestions {
			if _, err := fmt.Fprintf(r.Out, "  - %s\n", tip); err != nil {
				return err
			}
		}
	}

	if history != nil {
		if _, err := fmt.Fprintf(r.Out, "\nCompletions:\n"); err != nil {
			return err
		}
		if len(history) == 0 {
			_, err := fmt.Fprintln(r.Out, "  (none)")
			return err
		}
		for _, at := range history {
			if _, err := fmt.Fprintf(r.Out, "  %s\n", at.In(r.Now.Location()).Format(dateTimeLayout)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Seeded reports the habits created by a seed run.
func (r *Renderer) Seeded(results []seed.Result) error {
	if r.JSON {
		return r.WriteJSON(results)
	}

	tbl := r.newTable()
	tbl.AppendHeader(table.Row{"ID", "Name", "Periodicity", "Completions", "Target Rate", "Actual Rate"})
	total := 0
	for _, res := range results {
		total += res.Completions
		tbl.AppendRow(table.Row{
			res.Habit.ID,
			res.Habit.Name,
			r.label(res.Habit.Periodicity),
			res.Completions,
			fmt.Sprintf("%.0f%%", res.TargetRate),
			fmt.Sprintf("%.0f%%", res.ActualRate),
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s, %s",
		english.Plural(len(results), "habit", ""), english.Plural(total, "completion", ""))})
	_, err := fmt.Fprintln(r.Out, tbl.Render())
	return err
}

// ReportWritten confirms a report file was written.
func (r *Renderer) ReportWritten(path string) error {
	if r.JSON {
		return r.WriteJSON(map[string]string{"report": path})
	}
	_, err := fmt.Fprintf(r.Out, "%s %s\n", r.paint(color.FgGreen, "Report written to"), path)
	return err
}

func (r *Renderer) newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	return tbl
}

func (r *Renderer) status(res streak.Result) string {
	switch {
	case res.Broken:
		return r.paint(color.FgRed, statusBroken)
	case res.LastCompletion == nil:
		return r.paint(color.FgYellow, statusNew)
	default:
		return r.paint(color.FgGreen, statusActive)
	}
}

func (r *Renderer) lastCompleted(res streak.Result) string {
	if res.LastCompletion == nil {
		return "never"
	}
	return humanize.RelTime(*res.LastCompletion, r.Now, "ago", "from now")
}
