package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hlop3z/autofk/internal/engine"
)

// StatusTable renders migration statuses as a table. Terminals get rounded
// borders and badges; plain output uses ASCII borders.
func StatusTable(statuses []engine.MigrationStatus) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{s.Revision, s.Name, StatusBadge(s.Status), s.AppliedAt})
	}

	t := table.New().
		Headers("REVISION", "NAME", "STATUS", "APPLIED AT").
		Rows(rows...)

	if !EnableColors() {
		return t.Border(lipgloss.ASCIIBorder()).String() + "\n"
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(colorHighlight).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String() + "\n"
}

// StatusSummary counts statuses: "2 applied, 1 pending".
func StatusSummary(statuses []engine.MigrationStatus) string {
	counts := map[engine.PlanStatus]int{}
	for _, s := range statuses {
		counts[s.Status]++
	}

	var parts []string
	for _, st := range []engine.PlanStatus{engine.StatusApplied, engine.StatusPending, engine.StatusModified, engine.StatusMissing} {
		if n := counts[st]; n > 0 || st == engine.StatusApplied {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	return strings.Join(parts, ", ")
}

// FormatPlan renders the SQL a migration would run, one statement per
// paragraph, headed by a comment naming the migration.
func FormatPlan(p engine.Planned) string {
	var b strings.Builder
	b.WriteString(Dim(fmt.Sprintf("-- %s %s", p.Migration.Revision, p.Migration.Name)) + "\n")
	if len(p.Statements) == 0 {
		b.WriteString(Dim("-- nothing to do") + "\n")
	}
	for _, stmt := range p.Statements {
		b.WriteString(SQL(stmt+";") + "\n")
	}
	return b.String()
}

// FormatCount formats a count with its noun: "1 migration", "3 migrations".
func FormatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
