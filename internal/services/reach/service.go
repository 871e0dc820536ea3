// Package reach polls a host until it answers or the attempt budget runs out.
package reach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/retry"
	"github.com/rs/zerolog"
)

// probeGrace is added to the probe timeout to bound a whole attempt, leaving
// room for process startup on top of the probe's own wait.
const probeGrace = time.Second

var (
	// ErrProbeExhausted marks an outcome where no attempt succeeded.
	ErrProbeExhausted = errors.New("host did not respond")
	// ErrEmptyHost is returned when no host is given.
	ErrEmptyHost = errors.New("probe target is empty")
	// ErrUnknownMethod is returned for a probe method without a prober.
	ErrUnknownMethod = errors.New("unknown probe method")
)

// Service defines the interface for reachability polling.
type Service interface {
	Check(ctx context.Context, host string, opts models.ProbeOptions) (*models.ProbeOutcome, error)
}

// DefaultOptions returns 10 ping attempts with a 1s timeout, 1s apart.
func DefaultOptions() models.ProbeOptions {
	return models.ProbeOptions{
		Method:      models.ProbePing,
		Timeout:     time.Second,
		MaxAttempts: 10,
		Delay:       time.Second,
		TCPPort:     22,
	}
}

// Impl implements the reach Service interface.
type Impl struct {
	probers map[string]Prober
	logger  zerolog.Logger
}

// New creates a new reachability service with the ping, http and tcp probers.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		probers: map[string]Prober{
			models.ProbePing: NewPingProber(),
			models.ProbeHTTP: NewHTTPProber(),
			models.ProbeTCP:  NewTCPProber(),
		},
		logger: logger,
	}
}

// NewWithProbers creates a new reachability service with custom probers (for testing).
func NewWithProbers(logger zerolog.Logger, probers map[string]Prober) *Impl {
	return &Impl{
		probers: probers,
		logger:  logger,
	}
}

// Check probes host up to opts.MaxAttempts times and stops at the first answer.
// Unset method, timeout, attempt count and TCP port fall back to DefaultOptions;
// a zero delay means back-to-back attempts. An exhausted poll is not an
// error of the call: it is reported through outcome.Error wrapping ErrProbeExhausted.
func (s *Impl) Check(ctx context.Context, host string, opts models.ProbeOptions) (*models.ProbeOutcome, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, ErrEmptyHost
	}

	opts = withDefaults(opts)
	prober, ok := s.probers[opts.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, opts.Method)
	}

	start := time.Now()
	outcome := &models.ProbeOutcome{Host: host}

	s.logger.Info().
		Str("host", host).
		Str("method", opts.Method).
		Int("max_attempts", opts.MaxAttempts).
		Dur("timeout", opts.Timeout).
		Msg("checking reachability")

	res := retry.Do(ctx, retry.Policy{
		Attempts:      opts.MaxAttempts,
		Timeout:       opts.Timeout + probeGrace,
		Delay:         opts.Delay,
		StopOnSuccess: true,
	}, func(ctx context.Context, attempt int) error {
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt, opts.MaxAttempts)
		}
		err := prober.Probe(ctx, host, opts)
		if err != nil {
			s.logger.Debug().Err(err).Int("attempt", attempt).Msg("host not reachable yet")
		}
		return err
	})

	outcome.Attempts = res.Attempts
	outcome.Reachable = res.OK()
	outcome.Duration = time.Since(start)

	if !outcome.Reachable {
		outcome.Error = fmt.Errorf("%w: %s after %d attempts", ErrProbeExhausted, host, res.Attempts)
		s.logger.Info().Str("host", host).Int("attempts", res.Attempts).Msg("host unreachable")
		return outcome, nil
	}

	s.logger.Info().
		Str("host", host).
		Int("attempt", res.Attempts).
		Dur("duration", outcome.Duration).
		Msg("host is reachable")

	return outcome, nil
}

// withDefaults fills in unset fields. Delay is left alone: zero is a valid
// request for back-to-back probes, and only a negative delay is clamped.
func withDefaults(opts models.ProbeOptions) models.ProbeOptions {
	def := DefaultOptions()
	if opts.Method == "" {
		opts.Method = def.Method
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.TCPPort == 0 {
		opts.TCPPort = def.TCPPort
	}
	return opts
}
