package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles key presses, worker events and terminal resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, msg.Width-4)
		m.logView.Width = msg.Width
		return m, nil

	case eventMsg:
		m = m.applyEvent(models.Event(msg))
		return m, waitForEvent(m.events)

	case workerDoneMsg:
		m.busy = false
		m.events = nil
		return m, nil

	case tea.KeyMsg:
		if m.promptOpen {
			return m.updatePrompt(msg)
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down", "enter":
			return m.moveFocus(1)
		case "shift+tab", "up":
			return m.moveFocus(-1)
		case "ctrl+s":
			svc, cfg := m.runner, m.config()
			return m.start(func(ctx context.Context, events chan<- models.Event) {
				_, _ = svc.Save(ctx, cfg, events)
			})
		case "ctrl+r":
			svc, cfg := m.runner, m.config()
			return m.start(func(ctx context.Context, events chan<- models.Event) {
				_, _ = svc.Transmit(ctx, cfg, events)
			})
		case "ctrl+t":
			if m.busy {
				m = m.appendLog("Another operation is still running.")
				return m, nil
			}
			m.promptOpen = true
			m.promptInput.SetValue(models.DefaultPingHost)
			m.promptInput.CursorEnd()
			m.inputs[m.focus].Blur()
			return m, m.promptInput.Focus()
		}
	}

	return m.updateInputs(msg)
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m = m.closePrompt()
		return m, m.inputs[m.focus].Focus()
	case "enter":
		host := strings.TrimSpace(m.promptInput.Value())
		if host == "" {
			m.status = "Please enter a target."
			m.statusKind = statusError
			return m, nil
		}
		m = m.closePrompt()
		svc, opts := m.runner, m.probeOpts
		focusCmd := m.inputs[m.focus].Focus()
		m2, cmd := m.start(func(ctx context.Context, events chan<- models.Event) {
			_, _ = svc.WakeCheck(ctx, host, opts, events)
		})
		return m2, tea.Batch(focusCmd, cmd)
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m Model) closePrompt() Model {
	m.promptOpen = false
	m.promptInput.Blur()
	return m
}

func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	return m, m.inputs[m.focus].Focus()
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

// start launches fn on a worker unless one is already running.
func (m Model) start(fn func(ctx context.Context, events chan<- models.Event)) (tea.Model, tea.Cmd) {
	if m.busy {
		m = m.appendLog("Another operation is still running.")
		return m, nil
	}
	m.busy = true
	m.status = ""
	m.statusKind = statusNone
	m.events = runner.Start(m.ctx, fn)
	return m, waitForEvent(m.events)
}

func (m Model) applyEvent(ev models.Event) Model {
	switch ev.Kind {
	case models.EventLog:
		m = m.appendLog(ev.Message)
	case models.EventProgress:
		m.percent = float64(ev.Progress) / 100
	case models.EventSuccess:
		m.status = ev.Message
		m.statusKind = statusOK
	case models.EventFailure:
		m.status = ev.Message
		if ev.Err != nil && !runner.IsNegativeOutcome(ev.Err) {
			m.status = fmt.Sprintf("%s: %v", ev.Message, ev.Err)
		}
		m.statusKind = statusError
		if runner.IsNegativeOutcome(ev.Err) {
			m.statusKind = statusWarn
		}
	}
	return m
}

func (m Model) appendLog(line string) Model {
	m.logLines = append(m.logLines, line)
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	m.logView.GotoBottom()
	return m
}
