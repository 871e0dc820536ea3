package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var fieldLabels = [fieldCount]string{
	"Router/Target Address (e.g. http://192.168.0.1/)",
	"WOL Port (default 7,9)",
	"MAC Address (AA:BB:CC:DD:EE:FF)",
}

// View renders the form, progress bar, log pane and the ping prompt when open.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("WOL Magic Packet Sender"))
	b.WriteString("\n\n")

	for i, label := range fieldLabels {
		style := labelStyle
		if i == m.focus && !m.promptOpen {
			style = focusedStyle
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n  ")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+s save config • ctrl+r execute WOL • ctrl+t wake check (ping) • tab next field • esc quit"))
	b.WriteString("\n\n")

	if m.promptOpen {
		prompt := "Target IP/Host to ping (PC's private IP recommended)\n" +
			m.promptInput.View() + "\n" +
			helpStyle.Render("enter confirm • esc cancel")
		b.WriteString(promptStyle.Render(prompt))
		b.WriteString("\n\n")
	}

	b.WriteString(labelStyle.Render("Progress Status"))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(m.percent))
	b.WriteString("\n")
	b.WriteString(logStyle.Render(m.logView.View()))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.statusStyle().Render(m.status))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) statusStyle() lipgloss.Style {
	switch m.statusKind {
	case statusOK:
		return okStyle
	case statusWarn:
		return warnStyle
	case statusError:
		return errorStyle
	default:
		return labelStyle
	}
}
