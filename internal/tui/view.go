package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tdh8316/acclookup/internal/lookup"
)

const (
	columnWidth = 18
	// title, username pane, status line, help and borders around the results.
	fixedRows = 9
)

func (m Model) View() string {
	sections := []string{
		titleStyle.Render("acclookup"),
		m.usernameView(),
		m.platformsView(),
		m.statusView(),
		paneStyle.Render(m.results.View()),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) usernameView() string {
	style := paneStyle
	if m.focus == paneUsername {
		style = activePane
	}
	body := labelStyle.Render("Username") + "\n" + m.input.View()
	if m.focus == paneExport {
		style = activePane
		body = labelStyle.Render("Export") + "\n" + m.path.View()
	}
	return style.Render(body)
}

func (m Model) platformsView() string {
	style := paneStyle
	if m.focus == panePlatforms {
		style = activePane
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("Platforms (%d/%d)", len(m.selected), len(m.names))))
	for i, name := range m.names {
		if i%m.columns == 0 {
			b.WriteString("\n")
		}

		box := "[ ]"
		if m.selected.Has(name) {
			box = checkedStyle.Render("[x]")
		}
		label := name
		if m.focus == panePlatforms && i == m.cursor {
			label = cursorStyle.Render(name)
		}
		cell := box + " " + label
		if pad := columnWidth - lipgloss.Width(cell); pad > 0 {
			cell += strings.Repeat(" ", pad)
		}
		b.WriteString(cell)
	}
	return style.Render(b.String())
}

func (m Model) statusView() string {
	switch {
	case m.searching:
		return m.spinner.View() + " " + statusStyle.Render(fmt.Sprintf("Searching %s...", m.username))
	case m.status == "":
		return ""
	case m.statusWarn:
		return warnStyle.Render(m.status)
	default:
		return statusStyle.Render(m.status)
	}
}

func renderResults(results lookup.ResultSet) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		switch r.Outcome {
		case lookup.Exists:
			lines = append(lines, existsStyle.Render("[+] "+r.Message))
		case lookup.NotFound:
			lines = append(lines, notFoundStyle.Render("[-] "+r.Message))
		default:
			lines = append(lines, errorStyle.Render("[!] "+r.Message))
		}
	}
	return strings.Join(lines, "\n")
}
