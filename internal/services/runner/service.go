// Package runner executes the user-facing workflows and reports their
// progress as events so that a front end never has to block on network I/O.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/hwaddr"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/reach"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/wol"
	"github.com/rs/zerolog"
)

// Service defines the interface for the workflow runner.
type Service interface {
	Save(ctx context.Context, cfg models.AppConfig, events chan<- models.Event) (models.AppConfig, error)
	Transmit(ctx context.Context, cfg models.AppConfig, events chan<- models.Event) (*models.TransmissionResult, error)
	WakeCheck(ctx context.Context, host string, opts models.ProbeOptions, events chan<- models.Event) (*models.ProbeOutcome, error)
}

// ConfigStore persists the user configuration.
type ConfigStore interface {
	Save(cfg models.AppConfig) (models.AppConfig, error)
}

// Impl implements the runner Service interface.
type Impl struct {
	wolSvc   wol.Service
	reachSvc reach.Service
	store    ConfigStore
	logger   zerolog.Logger
}

// New creates a new runner service.
func New(logger zerolog.Logger, store ConfigStore) *Impl {
	return &Impl{
		wolSvc:   wol.New(logger),
		reachSvc: reach.New(logger),
		store:    store,
		logger:   logger,
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(logger zerolog.Logger, wolSvc wol.Service, reachSvc reach.Service, store ConfigStore) *Impl {
	return &Impl{
		wolSvc:   wolSvc,
		reachSvc: reachSvc,
		store:    store,
		logger:   logger,
	}
}

// Start runs fn on its own goroutine. The returned channel delivers fn's
// events and is closed once fn returns.
func Start(ctx context.Context, fn func(ctx context.Context, events chan<- models.Event)) <-chan models.Event {
	events := make(chan models.Event, 16)
	go func() {
		defer close(events)
		fn(ctx, events)
	}()
	return events
}

type emitter struct {
	ctx    context.Context
	action string
	events chan<- models.Event
}

func (e emitter) send(ev models.Event) {
	if e.events == nil {
		return
	}
	ev.Action = e.action
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
	}
}

func (e emitter) log(format string, args ...any) {
	e.send(models.Event{Kind: models.EventLog, Message: fmt.Sprintf(format, args...)})
}

func (e emitter) progress(pct int) {
	e.send(models.Event{Kind: models.EventProgress, Progress: pct})
}

func (e emitter) success(msg string) {
	e.send(models.Event{Kind: models.EventSuccess, Message: msg})
}

func (e emitter) failure(msg string, err error) {
	e.send(models.Event{Kind: models.EventFailure, Message: msg, Err: err})
}

// Save normalizes and persists cfg.
func (s *Impl) Save(ctx context.Context, cfg models.AppConfig, events chan<- models.Event) (models.AppConfig, error) {
	em := emitter{ctx: ctx, action: models.ActionSave, events: events}

	saved, err := s.store.Save(cfg)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save configuration")
		em.failure("Save failed", err)
		return saved, err
	}

	s.logger.Info().Str("router_ip", saved.RouterIP).Str("mac", saved.MAC).Msg("configuration saved")
	em.log("✓ Configuration saved successfully")
	em.success("Configuration saved")
	return saved, nil
}

// Transmit sends the magic packet described by cfg.
func (s *Impl) Transmit(ctx context.Context, cfg models.AppConfig, events chan<- models.Event) (*models.TransmissionResult, error) {
	em := emitter{ctx: ctx, action: models.ActionTransmit, events: events}
	em.progress(0)

	result, err := s.transmit(ctx, cfg, em)
	if err != nil {
		s.logger.Error().Err(err).Msg("WOL execution failed")
		em.log("Failed: %v", err)
		em.failure("WOL execution failed", err)
		em.progress(0)
		return result, err
	}

	em.progress(70)
	em.log("Transmission successful: please check that the target is powering on.")
	em.progress(85)
	em.success("WOL packet transmission completed!")
	em.progress(100)
	return result, nil
}

func (s *Impl) transmit(ctx context.Context, cfg models.AppConfig, em emitter) (*models.TransmissionResult, error) {
	mac, err := hwaddr.Normalize(cfg.MAC)
	if err != nil {
		return nil, err
	}

	host := wol.NormalizeHost(cfg.RouterIP)
	portDisplay := strings.TrimSpace(cfg.Port)
	if portDisplay == "" {
		portDisplay = fmt.Sprintf("%v (default)", wol.DefaultPorts())
	}

	em.log("Started: Magic Packet direct transmission, target=%s, MAC=%s, ports=%s", host, mac, portDisplay)
	em.progress(10)

	em.log("Transmitting Magic Packet...")
	result, err := s.wolSvc.Send(ctx, mac, host, cfg.Port)
	if err != nil {
		return nil, err
	}
	em.progress(40)

	for _, line := range result.Lines() {
		em.log("  %s", line)
	}

	if result.Error != nil {
		return result, result.Error
	}

	em.log("✅ Magic Packet transmission successful!")
	return result, nil
}

// WakeCheck polls host until it answers. An unreachable host is reported as a
// failure event carrying reach.ErrProbeExhausted but not as an error return;
// only an unusable request (empty host, unknown method) returns an error.
func (s *Impl) WakeCheck(ctx context.Context, host string, opts models.ProbeOptions, events chan<- models.Event) (*models.ProbeOutcome, error) {
	em := emitter{ctx: ctx, action: models.ActionCheck, events: events}

	em.log("Ping check started: %s", host)
	em.progress(10)

	opts.OnAttempt = func(attempt, maxAttempts int) {
		em.log("Ping attempt %d/%d ...", attempt, maxAttempts)
		em.progress(10 + (attempt-1)*80/maxAttempts)
	}

	outcome, err := s.reachSvc.Check(ctx, host, opts)
	if err != nil {
		em.log("Failed: %v", err)
		em.failure("Wake check failed", err)
		em.progress(0)
		return nil, err
	}

	if !outcome.Reachable {
		em.log("✗ No response yet. Please try again later.")
		em.failure("No response yet. Please wait a bit longer and try again.", outcome.Error)
		em.progress(0)
		return outcome, nil
	}

	em.log("✓ Target is responding (wake-up confirmed).")
	em.success("Success: target is responding.")
	em.progress(100)
	return outcome, nil
}

// IsNegativeOutcome reports whether err only says that a host did not answer.
func IsNegativeOutcome(err error) bool {
	return errors.Is(err, reach.ErrProbeExhausted)
}
