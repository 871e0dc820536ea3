// Package wol provides Wake-on-LAN magic packet transmission.
package wol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/hwaddr"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/retry"
	"github.com/mdlayher/wol"
	"github.com/rs/zerolog"
)

// MagicPacketSize is the length of a magic packet without password.
const MagicPacketSize = 6 + 16*6

var (
	// ErrInvalidPort is returned for a port specification that is not a UDP port number.
	ErrInvalidPort = errors.New("invalid port number")
	// ErrInvalidHost is returned when no target host is left after normalization.
	ErrInvalidHost = errors.New("invalid target host")
	// ErrTransmissionFailure is set on a result when every port failed.
	ErrTransmissionFailure = errors.New("transmission failed on all ports")
)

// DefaultPorts returns the ports used when none is specified.
func DefaultPorts() []int {
	return []int{7, 9}
}

// Service defines the interface for magic packet transmission.
type Service interface {
	Send(ctx context.Context, mac, host, portSpec string) (*models.TransmissionResult, error)
}

// Dialer opens the UDP socket used for a single port.
type Dialer interface {
	ListenPacket(ctx context.Context) (net.PacketConn, error)
}

// DefaultDialer opens an unbound UDP socket. The Go runtime enables
// SO_BROADCAST on datagram sockets, so broadcast targets work as is.
type DefaultDialer struct{}

// ListenPacket opens a new UDP socket on an ephemeral port.
func (d *DefaultDialer) ListenPacket(ctx context.Context) (net.PacketConn, error) {
	var lc net.ListenConfig
	return lc.ListenPacket(ctx, "udp", ":0")
}

// Options tunes the transmission cadence.
type Options struct {
	Attempts     int           // sends per port
	SendDelay    time.Duration // between sends on one port
	PortDelay    time.Duration // between ports
	WriteTimeout time.Duration // per send
}

// DefaultOptions returns the standard cadence: 3 sends 100ms apart, 300ms between ports.
func DefaultOptions() Options {
	return Options{
		Attempts:     3,
		SendDelay:    100 * time.Millisecond,
		PortDelay:    300 * time.Millisecond,
		WriteTimeout: 3 * time.Second,
	}
}

// Impl implements the WOL Service interface.
type Impl struct {
	dialer Dialer
	opts   Options
	logger zerolog.Logger
}

// New creates a new WOL service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		dialer: &DefaultDialer{},
		opts:   DefaultOptions(),
		logger: logger,
	}
}

// NewWithDialer creates a new WOL service with a custom dialer and cadence (for testing).
func NewWithDialer(logger zerolog.Logger, dialer Dialer, opts Options) *Impl {
	return &Impl{
		dialer: dialer,
		opts:   opts,
		logger: logger,
	}
}

// MagicPacket builds the 102-byte payload for mac.
func MagicPacket(mac net.HardwareAddr) ([]byte, error) {
	p := &wol.MagicPacket{Target: mac}
	return p.MarshalBinary()
}

// ParsePorts turns a port specification into the ordered list of ports to use.
// A blank specification selects DefaultPorts.
func ParsePorts(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DefaultPorts(), nil
	}

	port, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPort, spec)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: %d is outside 1-65535", ErrInvalidPort, port)
	}

	return []int{port}, nil
}

// NormalizeHost strips an http(s) scheme and surrounding slashes from a router address.
func NormalizeHost(addr string) string {
	host := strings.TrimSpace(addr)
	for _, scheme := range []string{"http://", "https://"} {
		if len(host) >= len(scheme) && strings.EqualFold(host[:len(scheme)], scheme) {
			host = host[len(scheme):]
			break
		}
	}
	return strings.Trim(host, "/")
}

// Send validates its inputs, then transmits the magic packet for mac to every port of host.
// Validation failures are returned as errors before any socket is opened. A transmission
// where no port succeeded is reported through result.Error.
func (s *Impl) Send(ctx context.Context, mac, host, portSpec string) (*models.TransmissionResult, error) {
	hw, err := hwaddr.Parse(mac)
	if err != nil {
		return nil, err
	}

	ports, err := ParsePorts(portSpec)
	if err != nil {
		return nil, err
	}

	host = NormalizeHost(host)
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidHost)
	}

	packet, err := MagicPacket(hw)
	if err != nil {
		return nil, fmt.Errorf("building magic packet: %w", err)
	}

	start := time.Now()
	result := &models.TransmissionResult{
		MAC:    hwaddr.Format(hw),
		Target: models.TransmissionTarget{Host: host, Ports: ports},
	}

	s.logger.Info().
		Str("mac", result.MAC).
		Str("host", host).
		Ints("ports", ports).
		Msg("sending magic packet")

	for i, port := range ports {
		if i > 0 && s.opts.PortDelay > 0 {
			select {
			case <-ctx.Done():
				result.Duration = time.Since(start)
				result.Error = ctx.Err()
				return result, nil
			case <-time.After(s.opts.PortDelay):
			}
		}

		pr := s.sendPort(ctx, host, port, packet)
		result.Ports = append(result.Ports, pr)
		if pr.Sent > 0 {
			result.Success = true
		}

		s.logger.Info().
			Int("port", port).
			Int("sent", pr.Sent).
			Int("attempted", pr.Attempted).
			AnErr("port_error", pr.Error).
			Msg("port done")
	}

	result.Duration = time.Since(start)
	if !result.Success {
		result.Error = fmt.Errorf("%w (%s)", ErrTransmissionFailure, host)
		s.logger.Warn().Str("host", host).Msg("magic packet was not sent on any port")
		return result, nil
	}

	s.logger.Info().Dur("duration", result.Duration).Msg("magic packet sent")
	return result, nil
}

// sendPort owns one socket for the lifetime of a port's attempts.
func (s *Impl) sendPort(ctx context.Context, host string, port int, packet []byte) models.PortResult {
	pr := models.PortResult{Port: port}

	conn, err := s.dialer.ListenPacket(ctx)
	if err != nil {
		pr.Error = fmt.Errorf("failed to open socket: %w", err)
		return pr
	}
	defer func() { _ = conn.Close() }()

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		pr.Error = fmt.Errorf("failed to resolve %s: %w", host, err)
		return pr
	}

	res := retry.Do(ctx, retry.Policy{
		Attempts: s.opts.Attempts,
		Delay:    s.opts.SendDelay,
	}, func(_ context.Context, attempt int) error {
		if s.opts.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
		}
		n, err := conn.WriteTo(packet, addr)
		if err == nil && n != len(packet) {
			err = fmt.Errorf("short write: %d of %d bytes", n, len(packet))
		}
		if err != nil {
			s.logger.Debug().Err(err).Int("port", port).Int("attempt", attempt).Msg("send attempt failed")
		}
		return err
	})

	pr.Attempted = res.Attempts
	pr.Sent = res.Succeeded
	return pr
}
