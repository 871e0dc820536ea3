// Package tui is the interactive terminal front end.
package tui

import (
	"context"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Form fields, in focus order.
const (
	fieldRouter = iota
	fieldPort
	fieldMAC
	fieldCount
)

const (
	defaultWidth = 72
	logHeight    = 12
)

type statusKind int

const (
	statusNone statusKind = iota
	statusOK
	statusWarn
	statusError
)

// eventMsg carries one workflow event into the update loop.
type eventMsg models.Event

// workerDoneMsg is delivered once a worker's event channel is closed.
type workerDoneMsg struct{}

// Model holds all UI state. It is only mutated inside Update; workers talk to
// it exclusively through their event channel.
type Model struct {
	ctx       context.Context
	runner    runner.Service
	probeOpts models.ProbeOptions

	inputs []textinput.Model
	focus  int

	promptOpen  bool
	promptInput textinput.Model

	progress progress.Model
	percent  float64
	logView  viewport.Model
	logLines []string

	busy   bool
	events <-chan models.Event

	status     string
	statusKind statusKind
	width      int
}

// New builds the UI pre-filled from cfg.
func New(ctx context.Context, cfg models.AppConfig, svc runner.Service, probeOpts models.ProbeOptions) Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 40
		inputs[i] = ti
	}

	inputs[fieldRouter].Placeholder = models.DefaultRouterIP
	inputs[fieldRouter].SetValue(cfg.RouterIP)
	inputs[fieldPort].Placeholder = "7,9 (default)"
	inputs[fieldPort].CharLimit = 5
	inputs[fieldPort].SetValue(cfg.Port)
	inputs[fieldMAC].Placeholder = "AA:BB:CC:DD:EE:FF"
	inputs[fieldMAC].CharLimit = 17
	inputs[fieldMAC].SetValue(cfg.MAC)
	inputs[fieldRouter].Focus()

	prompt := textinput.New()
	prompt.Prompt = ""
	prompt.Width = 30

	return Model{
		ctx:         ctx,
		runner:      svc,
		probeOpts:   probeOpts,
		inputs:      inputs,
		promptInput: prompt,
		progress:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth-4)),
		logView:     viewport.New(defaultWidth, logHeight),
		width:       defaultWidth,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// config reads the form into a configuration value.
func (m Model) config() models.AppConfig {
	return models.AppConfig{
		RouterIP: m.inputs[fieldRouter].Value(),
		Port:     m.inputs[fieldPort].Value(),
		MAC:      m.inputs[fieldMAC].Value(),
	}
}

func waitForEvent(ch <-chan models.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return workerDoneMsg{}
		}
		return eventMsg(ev)
	}
}
