package menu

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/claude-usage-tracker/internal/domain"
)

const barWidth = 24

// Render produces the one-shot terminal view of a DisplayState: the title
// line plus the three window rows, with a usage bar per window when a
// snapshot is available. Sentinel titles render highlighted; the rows keep
// whatever the reducer produced, stale or not.
func Render(state domain.DisplayState, snapshot *domain.UsageSnapshot) string {
	s := newStyles()

	titleStyle := s.title
	if state.Title == domain.TitleSetup || state.Title == domain.TitleError {
		titleStyle = s.sentinel
	}

	lines := []string{
		titleStyle.Render(state.Title),
		rowLine(state.Session, windowOf(snapshot, func(u *domain.UsageSnapshot) *domain.UsageWindow { return u.FiveHour }), s),
		rowLine(state.Weekly, windowOf(snapshot, func(u *domain.UsageSnapshot) *domain.UsageWindow { return u.SevenDay }), s),
		rowLine(state.Sonnet, windowOf(snapshot, func(u *domain.UsageSnapshot) *domain.UsageWindow { return u.SevenDaySonnet }), s),
	}

	if state.Title == domain.TitleSetup {
		lines = append(lines, s.hint.Render("Run `cu settings` to configure credentials."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func windowOf(snapshot *domain.UsageSnapshot, pick func(*domain.UsageSnapshot) *domain.UsageWindow) *domain.UsageWindow {
	if snapshot == nil {
		return nil
	}

	return pick(snapshot)
}

func rowLine(text string, window *domain.UsageWindow, s styles) string {
	if text == "" {
		text = "—"
	}

	style := s.row
	if strings.HasSuffix(text, "N/A") || strings.HasSuffix(text, "Not configured") {
		style = s.rowMissing
	}

	if window == nil {
		return style.Render(text)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderUsageBar(window.Percent(), barWidth, s),
		" ",
		style.Render(text),
	)
}

func renderUsageBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	filled := int(math.Round(float64(width) * used / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", width-filled))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
