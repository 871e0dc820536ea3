package main

import (
	"context"
	"fmt"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgRouter string
	cfgPort   string
	cfgMAC    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the saved settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings",
	RunE:  runConfigShow,
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Update the saved settings",
	Long: `Update the saved settings. Only the given flags change; the MAC
address is validated and stored as AA:BB:CC:DD:EE:FF.`,
	RunE: runConfigSave,
}

func init() {
	configSaveCmd.Flags().StringVarP(&cfgRouter, "router", "r", "", "router or broadcast address")
	configSaveCmd.Flags().StringVarP(&cfgPort, "port", "p", "", "UDP port (empty means 7 and 9)")
	configSaveCmd.Flags().StringVarP(&cfgMAC, "mac", "m", "", "target MAC address")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		log.Error().Err(err).Msg("failed to locate config directory")
		return err
	}
	cfg := loadConfig(store)

	port := cfg.Port
	if port == "" {
		port = "7,9 (default)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:      %s\n", store.Path())
	fmt.Fprintf(out, "Router IP: %s\n", cfg.RouterIP)
	fmt.Fprintf(out, "Port:      %s\n", port)
	fmt.Fprintf(out, "MAC:       %s\n", cfg.MAC)
	return nil
}

func runConfigSave(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := openStore()
	if err != nil {
		log.Error().Err(err).Msg("failed to locate config directory")
		return err
	}
	cfg := loadConfig(store)

	if cmd.Flags().Changed("router") {
		cfg.RouterIP = cfgRouter
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = cfgPort
	}
	if cmd.Flags().Changed("mac") {
		cfg.MAC = cfgMAC
	}

	svc := runner.New(log.Logger, store)

	var saveErr error
	runWorkflow(context.Background(), func(ctx context.Context, events chan<- models.Event) {
		_, saveErr = svc.Save(ctx, cfg, events)
	})
	return saveErr
}
