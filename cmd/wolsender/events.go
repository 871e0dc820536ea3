package main

import (
	"context"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	"github.com/rs/zerolog/log"
)

// runWorkflow runs fn on a worker and logs its events until it finishes.
func runWorkflow(ctx context.Context, fn func(ctx context.Context, events chan<- models.Event)) {
	for ev := range runner.Start(ctx, fn) {
		switch ev.Kind {
		case models.EventLog:
			log.Info().Str("action", ev.Action).Msg(ev.Message)
		case models.EventProgress:
			log.Debug().Str("action", ev.Action).Int("progress", ev.Progress).Msg("progress")
		case models.EventSuccess:
			log.Info().Str("action", ev.Action).Msg(ev.Message)
		case models.EventFailure:
			if runner.IsNegativeOutcome(ev.Err) {
				log.Warn().Str("action", ev.Action).Msg(ev.Message)
				continue
			}
			log.Error().Err(ev.Err).Str("action", ev.Action).Msg(ev.Message)
		}
	}
}
