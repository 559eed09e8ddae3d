package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// SetColor switches ANSI styling on or off for all rendering.
func SetColor(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// BookingStateBadge colors a booking state by outcome.
func BookingStateBadge(s domain.BookingState) string {
	switch s {
	case domain.BookingComplete:
		return StyleGreen.Render("● " + string(s))
	case domain.BookingFailed:
		return StyleRed.Render("✖ " + string(s))
	case domain.BookingCompensated:
		return StyleDim.Render("↺ " + string(s))
	default:
		return StyleYellow.Render("◐ " + string(s))
	}
}

func TaskStatusBadge(s domain.TaskStatus) string {
	switch s {
	case domain.TaskCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.TaskCancelled:
		return StyleDim.Render("✖ Cancelled")
	case domain.TaskInProgress:
		return StyleYellow.Render("◐ In Progress")
	default:
		return StyleFg.Render("○ Todo")
	}
}

func PriorityBadge(p domain.TaskPriority) string {
	switch p {
	case domain.PriorityUrgent:
		return StyleRed.Render("urgent")
	case domain.PriorityHigh:
		return StyleYellow.Render("high")
	case domain.PriorityLow:
		return StyleDim.Render("low")
	default:
		return StyleFg.Render(string(p))
	}
}

// KindBadge labels a timeline entry by its source.
func KindBadge(k domain.TimelineKind) string {
	switch k {
	case domain.TimelineEvent:
		return StyleBlue.Render("event")
	case domain.TimelineTask:
		return StyleGreen.Render("task")
	case domain.TimelineInvoice:
		return StyleYellow.Render("invoice")
	case domain.TimelineContract:
		return StylePurple.Render("contract")
	default:
		return StyleDim.Render(string(k))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
