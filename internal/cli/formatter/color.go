package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/charmbracelet/lipgloss"
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

// TaskStatusPill returns a colored indicator such as "● In Progress".
func TaskStatusPill(status domain.TaskStatus) string {
	switch status {
	case domain.TaskTodo:
		return StyleBlue.Render("○ Todo")
	case domain.TaskInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.TaskReview:
		return StylePurple.Render("◐ Review")
	case domain.TaskDone:
		return StyleDim.Render("✔ Done")
	default:
		return StyleDim.Render(string(status))
	}
}

// PriorityBadge colors a priority by urgency.
func PriorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityBlocker, domain.PriorityHighest:
		return StyleRed.Render(string(p))
	case domain.PriorityHigh:
		return StyleYellow.Render(string(p))
	case domain.PriorityMedium:
		return StyleFg.Render(string(p))
	case "":
		return StyleDim.Render("--")
	default:
		return StyleDim.Render(string(p))
	}
}

func SprintStatusPill(status domain.SprintStatus) string {
	switch status {
	case domain.SprintActive:
		return StyleGreen.Render("● Active")
	case domain.SprintNotStarted:
		return StyleBlue.Render("○ Not started")
	case domain.SprintCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.SprintCancelled:
		return StyleYellow.Render("⊘ Cancelled")
	case domain.SprintDeleted:
		return StyleRed.Render("✖ Deleted")
	default:
		return StyleDim.Render(string(status))
	}
}

// RunStatePill renders a journaled run state.
func RunStatePill(state string) string {
	switch state {
	case "succeeded":
		return StyleGreen.Render("✔ succeeded")
	case "partially_failed":
		return StyleYellow.Render("▲ partial")
	case "failed":
		return StyleRed.Render("✖ failed")
	default:
		return StyleDim.Render(state)
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
