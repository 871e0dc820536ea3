package main

import (
	"context"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/reach"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	sendMAC       string
	sendRouter    string
	sendPort      string
	sendSave      bool
	sendCheckHost string
	sendWait      time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a magic packet using the saved settings",
	Long: `Send a Wake-on-LAN magic packet to the saved router address.

Flags override the saved settings for this run; --save stores them.
With --check the target host is polled afterwards until it answers.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendMAC, "mac", "m", "", "target MAC address")
	sendCmd.Flags().StringVarP(&sendRouter, "router", "r", "", "router or broadcast address the packet is sent to")
	sendCmd.Flags().StringVarP(&sendPort, "port", "p", "", "UDP port (empty sends to 7 and 9)")
	sendCmd.Flags().BoolVar(&sendSave, "save", false, "save the effective settings before sending")
	sendCmd.Flags().StringVar(&sendCheckHost, "check", "", "host to poll for a response after sending")
	sendCmd.Flags().DurationVar(&sendWait, "wait", 0, "pause between sending and checking")
}

func runSend(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := openStore()
	if err != nil {
		log.Error().Err(err).Msg("failed to locate config directory")
		return err
	}
	cfg := loadConfig(store)

	if cmd.Flags().Changed("mac") {
		cfg.MAC = sendMAC
	}
	if cmd.Flags().Changed("router") {
		cfg.RouterIP = sendRouter
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = sendPort
	}

	ctx, cancel := signalContext()
	defer cancel()

	svc := runner.New(log.Logger, store)

	if sendSave {
		var saveErr error
		runWorkflow(ctx, func(ctx context.Context, events chan<- models.Event) {
			cfg, saveErr = svc.Save(ctx, cfg, events)
		})
		if saveErr != nil {
			return saveErr
		}
	}

	var sendErr error
	runWorkflow(ctx, func(ctx context.Context, events chan<- models.Event) {
		_, sendErr = svc.Transmit(ctx, cfg, events)
	})
	if sendErr != nil {
		return sendErr
	}

	if sendCheckHost == "" {
		return nil
	}

	if sendWait > 0 {
		log.Info().Dur("wait", sendWait).Msg("waiting before wake check")
		select {
		case <-time.After(sendWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return wakeCheck(ctx, svc, sendCheckHost, reach.DefaultOptions())
}

// wakeCheck polls host and turns an unreachable outcome into an error so the
// process exits non-zero.
func wakeCheck(ctx context.Context, svc runner.Service, host string, opts models.ProbeOptions) error {
	var outcome *models.ProbeOutcome
	var checkErr error
	runWorkflow(ctx, func(ctx context.Context, events chan<- models.Event) {
		outcome, checkErr = svc.WakeCheck(ctx, host, opts, events)
	})
	if checkErr != nil {
		return checkErr
	}
	if !outcome.Reachable {
		return outcome.Error
	}
	log.Info().
		Str("host", outcome.Host).
		Int("attempts", outcome.Attempts).
		Dur("duration", outcome.Duration).
		Msg("target is awake")
	return nil
}
