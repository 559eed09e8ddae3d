package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
)

// ShiftView is the renderable part of one propagated due-date shift.
type ShiftView struct {
	TaskID string
	NewDue time.Time
	Depth  int
}

func FormatTaskList(tasks []*domain.Task, loc *time.Location, now time.Time) string {
	if len(tasks) == 0 {
		return Dim("No tasks.") + "\n"
	}
	headers := []string{"ID", "TITLE", "PRIORITY", "STATUS", "DUE", "DEPENDENTS"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := Dim("--")
		if t.DueDate != nil {
			due = t.DueDate.In(loc).Format("Jan 2 15:04")
			if !t.IsTerminal() {
				due += " " + DueStyled(*t.DueDate, now)
			}
		}
		deps := Dim("--")
		if len(t.Dependents) > 0 {
			deps = fmt.Sprintf("%d", len(t.Dependents))
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			Truncate(t.Title, 40),
			PriorityBadge(t.Priority),
			TaskStatusBadge(t.Status),
			due,
			deps,
		})
	}
	return RenderTable(headers, rows)
}

// FormatPropagation summarizes which dependents moved with a task.
func FormatPropagation(delta time.Duration, shifted []ShiftView, skipped, cycles []string, loc *time.Location) string {
	if len(shifted) == 0 && len(skipped) == 0 && len(cycles) == 0 {
		return Dim("No dependents shifted.") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Header("Dependents shifted"), Dim("by "+formatDelta(delta)))
	for _, s := range shifted {
		fmt.Fprintf(&b, "%s%s %s → %s\n", strings.Repeat("  ", s.Depth), StyleGreen.Render("↳"),
			TruncID(s.TaskID), s.NewDue.In(loc).Format("Mon Jan 2 15:04"))
	}
	for _, id := range skipped {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleDim.Render("⊘"), TruncID(id), Dim("skipped"))
	}
	for _, id := range cycles {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleYellow.Render("↻"), TruncID(id), StyleYellow.Render("cycle, not followed"))
	}
	return b.String()
}

func FormatActivity(acts []domain.TaskActivity, loc *time.Location) string {
	if len(acts) == 0 {
		return Dim("No activity.") + "\n"
	}
	var b strings.Builder
	for _, a := range acts {
		fmt.Fprintf(&b, "%s  %-15s %s\n", Dim(a.CreatedAt.In(loc).Format("Jan 2 15:04")), a.Action, a.Detail)
	}
	return b.String()
}

func formatDelta(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign, d = "-", -d
	}
	days := int(d / (24 * time.Hour))
	rest := d % (24 * time.Hour)
	switch {
	case days > 0 && rest == 0:
		return fmt.Sprintf("%s%dd", sign, days)
	case days > 0:
		return fmt.Sprintf("%s%dd %s", sign, days, rest)
	default:
		return sign + rest.String()
	}
}
