package main

import (
	"context"
	"errors"
	"os"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/reach"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive terminal UI (default)",
	Long: `Open the interactive form with the router address, WOL port and MAC address.

Keys:
  ctrl+s  save the settings
  ctrl+r  send the magic packet
  ctrl+t  check whether the target woke up (ping)
  tab     next field
  esc     quit`,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("the interactive UI needs a terminal; see 'wolsender --help' for the command line mode")
	}

	store, err := openStore()
	if err != nil {
		log.Error().Err(err).Msg("failed to locate config directory")
		return err
	}
	cfg := loadConfig(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := runner.New(log.Logger, store)
	model := tui.New(ctx, cfg, svc, reach.DefaultOptions())

	log.Info().Str("config", store.Path()).Msg("starting interactive UI")
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		log.Error().Err(err).Msg("UI terminated")
		return err
	}
	return nil
}
