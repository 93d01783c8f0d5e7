package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    lipgloss.Style
	labelStyle    lipgloss.Style
	paneStyle     lipgloss.Style
	activePane    lipgloss.Style
	cursorStyle   lipgloss.Style
	checkedStyle  lipgloss.Style
	dimStyle      lipgloss.Style
	existsStyle   lipgloss.Style
	notFoundStyle lipgloss.Style
	errorStyle    lipgloss.Style
	statusStyle   lipgloss.Style
	warnStyle     lipgloss.Style
)

func init() {
	initStyles(false)
}

// initStyles rebuilds every style. With noColor only borders and bold remain.
func initStyles(noColor bool) {
	fg := func(s lipgloss.Style, c string) lipgloss.Style {
		if noColor {
			return s
		}
		return s.Foreground(lipgloss.Color(c))
	}

	titleStyle = fg(lipgloss.NewStyle().Bold(true).Padding(0, 1), "86")
	labelStyle = lipgloss.NewStyle().Bold(true)

	paneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	activePane = paneStyle
	if !noColor {
		paneStyle = paneStyle.BorderForeground(lipgloss.Color("240"))
		activePane = activePane.BorderForeground(lipgloss.Color("86"))
	}

	cursorStyle = fg(lipgloss.NewStyle().Bold(true).Underline(noColor), "212")
	checkedStyle = fg(lipgloss.NewStyle(), "120")
	dimStyle = fg(lipgloss.NewStyle(), "243")
	existsStyle = fg(lipgloss.NewStyle(), "120")
	notFoundStyle = fg(lipgloss.NewStyle(), "221")
	errorStyle = fg(lipgloss.NewStyle(), "203")
	statusStyle = fg(lipgloss.NewStyle().Italic(true), "111")
	warnStyle = fg(lipgloss.NewStyle().Bold(true), "203")
}
