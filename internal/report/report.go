// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report renders a deterministic Markdown statistics report.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/bartekus/habits/internal/fsutil"
	"github.com/bartekus/habits/internal/stats"
)

const dateLayout = "2006-01-02"

// Generate renders the report for summaries evaluated at now. Summaries keep
// their order in the overview table.
func Generate(summaries []stats.Summary, now time.Time) string {
	var b strings.Builder

	b.WriteString(RenderHeader(1, "Habit Report"))
	b.WriteString(fmt.Sprintf("Reference time: %s\n\n", now.Format(time.RFC3339)))

	if len(summaries) == 0 {
		b.WriteString("No habits tracked yet.\n")
		return b.String()
	}

	b.WriteString(RenderHeader(2, "Overview"))
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		last := "never"
		if s.Streak.LastCompletion != nil {
			last = s.Streak.LastCompletion.In(now.Location()).Format(dateLayout)
		}
		rows = append(rows, []string{
			s.Habit.Name,
			string(s.Habit.Periodicity),
			strconv.Itoa(s.Streak.Current),
			strconv.Itoa(s.Streak.Longest),
			fmt.Sprintf("%.1f%%", s.CompletionRate),
			strconv.Itoa(s.Streak.Breaks),
			last,
		})
	}
	b.WriteString(RenderTable(
		[]string{"Habit", "Periodicity", "Current", "Longest", "Completion Rate", "Breaks", "Last Completed"},
		rows,
	))
	b.WriteString("\n")

	ranked := make([]stats.Row, 0, len(summaries))
	for _, s := range summaries {
		ranked = append(ranked, s.Row)
	}
	stats.SortByLongest(ranked)

	b.WriteString(RenderHeader(2, "Longest Streaks"))
	items := make([]string, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, fmt.Sprintf("%s: %s", r.Habit.Name,
			english.Plural(r.Streak.Longest, r.Habit.Periodicity.Unit(), "")))
	}
	b.WriteString(RenderList(items))

	var withTips []stats.Summary
	for _, s := range summaries {
		if len(s.Suggestions) > 0 {
			withTips = append(withTips, s)
		}
	}
	if len(withTips) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderHeader(2, "Suggestions"))
		for i, s := range withTips {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(RenderHeader(3, s.Habit.Name))
			b.WriteString(RenderList(s.Suggestions))
		}
	}

	return b.String()
}

// Write renders the report and writes it atomically to path.
func Write(path string, summaries []stats.Summary, now time.Time) error {
	if err := fsutil.AtomicWrite(path, []byte(Generate(summaries, now)), 0o600); err != nil {
		return fmt.Errorf("writing report %q: %w", path, err)
	}
	return nil
}
