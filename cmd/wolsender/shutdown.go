package main

import (
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/ssh"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	shutdownHost  string
	shutdownPort  int
	shutdownUser  string
	shutdownKey   string
	shutdownOS    string
	shutdownDelay int
	shutdownTest  bool
)

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Power the target off again over SSH",
	Long: `Connect to the target over SSH with a private key and shut it down.

Use --test to only verify that the connection and key work.`,
	RunE: runShutdown,
}

func init() {
	shutdownCmd.Flags().StringVar(&shutdownHost, "host", "", "SSH host (required)")
	shutdownCmd.Flags().IntVar(&shutdownPort, "port", 22, "SSH port")
	shutdownCmd.Flags().StringVarP(&shutdownUser, "user", "u", "", "SSH user (required)")
	shutdownCmd.Flags().StringVarP(&shutdownKey, "key", "k", "", "path to the private key (required)")
	shutdownCmd.Flags().StringVar(&shutdownOS, "os", "linux", "target operating system: linux or windows")
	shutdownCmd.Flags().IntVar(&shutdownDelay, "delay", 0, "minutes before the shutdown takes effect")
	shutdownCmd.Flags().BoolVar(&shutdownTest, "test", false, "only test the SSH connection")

	_ = shutdownCmd.MarkFlagRequired("host")
	_ = shutdownCmd.MarkFlagRequired("user")
	_ = shutdownCmd.MarkFlagRequired("key")
}

func runShutdown(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg := models.ShutdownConfig{
		Host:          shutdownHost,
		Port:          shutdownPort,
		Username:      shutdownUser,
		KeyPath:       shutdownKey,
		ShutdownDelay: shutdownDelay,
		OS:            shutdownOS,
	}

	ctx, cancel := signalContext()
	defer cancel()

	svc := ssh.New(log.Logger)

	if shutdownTest {
		result, err := svc.TestConnection(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Msg("invalid SSH settings")
			return err
		}
		if result.Error != nil {
			log.Error().Err(result.Error).Str("host", cfg.Host).Msg("SSH connection test failed")
			return result.Error
		}
		log.Info().Str("host", cfg.Host).Msg("SSH connection OK")
		return nil
	}

	result, err := svc.Shutdown(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("invalid SSH settings")
		return err
	}
	if result.Error != nil {
		log.Error().Err(result.Error).Str("host", cfg.Host).Msg("shutdown failed")
		return result.Error
	}
	log.Info().Str("host", cfg.Host).Str("command", ssh.ShutdownCommand(cfg)).Msg("shutdown command sent")
	return nil
}
