// Package ssh powers a machine back down over SSH once it is no longer needed.
package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// Service defines the interface for SSH operations.
type Service interface {
	Shutdown(ctx context.Context, cfg models.ShutdownConfig) (*models.SSHResult, error)
	TestConnection(ctx context.Context, cfg models.ShutdownConfig) (*models.SSHResult, error)
}

// SSHClient wraps ssh.Client for mocking.
type SSHClient interface {
	NewSession() (SSHSession, error)
	Close() error
}

// SSHSession wraps ssh.Session for mocking.
type SSHSession interface {
	CombinedOutput(cmd string) ([]byte, error)
	Close() error
}

// ClientFactory creates SSH clients.
type ClientFactory interface {
	NewClient(network, addr string, config *ssh.ClientConfig) (SSHClient, error)
}

// DefaultClientFactory dials real SSH servers.
type DefaultClientFactory struct{}

// NewClient dials addr and returns a connected client.
func (f *DefaultClientFactory) NewClient(network, addr string, config *ssh.ClientConfig) (SSHClient, error) {
	client, err := ssh.Dial(network, addr, config)
	if err != nil {
		return nil, err
	}
	return &sshClient{client: client}, nil
}

type sshClient struct {
	client *ssh.Client
}

func (c *sshClient) NewSession() (SSHSession, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *sshClient) Close() error {
	return c.client.Close()
}

// Impl implements the SSH Service interface.
type Impl struct {
	clientFactory ClientFactory
	logger        zerolog.Logger
}

// New creates a new SSH service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		clientFactory: &DefaultClientFactory{},
		logger:        logger,
	}
}

// NewWithClientFactory creates a new SSH service with a custom client factory (for testing).
func NewWithClientFactory(logger zerolog.Logger, factory ClientFactory) *Impl {
	return &Impl{
		clientFactory: factory,
		logger:        logger,
	}
}

// ShutdownCommand returns the power-off command for the target OS.
// ShutdownDelay is in minutes; Windows needs seconds and never gets less than 60.
func ShutdownCommand(cfg models.ShutdownConfig) string {
	if cfg.OS == "windows" {
		secs := cfg.ShutdownDelay * 60
		if secs == 0 {
			secs = 60
		}
		return fmt.Sprintf("shutdown /s /t %d", secs)
	}
	if cfg.ShutdownDelay == 0 {
		return "sudo shutdown -h now"
	}
	return fmt.Sprintf("sudo shutdown -h +%d", cfg.ShutdownDelay)
}

func clientConfig(cfg models.ShutdownConfig) (*ssh.ClientConfig, error) {
	key := cfg.PrivateKey
	if len(key) == 0 {
		if cfg.KeyPath == "" {
			return nil, fmt.Errorf("no private key provided")
		}
		var err error
		key, err = os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.KeyPath, err)
		}
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // LAN hosts woken by this tool
		Timeout:         30 * time.Second,
	}, nil
}

// run connects, executes cmd in a fresh session and records its output.
func (s *Impl) run(ctx context.Context, cfg models.ShutdownConfig, cmd string) (*models.SSHResult, error) {
	result := &models.SSHResult{}

	sshConfig, err := clientConfig(cfg)
	if err != nil {
		result.Error = err
		return result, nil
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	type dialed struct {
		client SSHClient
		err    error
	}
	dialCh := make(chan dialed, 1)
	go func() {
		c, err := s.clientFactory.NewClient("tcp", addr, sshConfig)
		dialCh <- dialed{c, err}
	}()

	var client SSHClient
	select {
	case <-ctx.Done():
		result.Error = ctx.Err()
		return result, nil
	case d := <-dialCh:
		if d.err != nil {
			result.Error = fmt.Errorf("failed to connect: %w", d.err)
			return result, nil
		}
		client = d.client
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		return result, nil
	}
	defer func() { _ = session.Close() }()

	s.logger.Debug().Str("host", cfg.Host).Str("command", cmd).Msg("executing remote command")

	output, err := session.CombinedOutput(cmd)
	result.Output = string(output)
	result.CommandRun = true
	if err != nil {
		result.Error = err
	}
	return result, nil
}

// Shutdown asks the remote host to power off.
func (s *Impl) Shutdown(ctx context.Context, cfg models.ShutdownConfig) (*models.SSHResult, error) {
	s.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("user", cfg.Username).
		Int("delay", cfg.ShutdownDelay).
		Msg("initiating remote shutdown")

	result, err := s.run(ctx, cfg, ShutdownCommand(cfg))
	if err != nil || result.Error == nil || !result.CommandRun {
		return result, err
	}

	// The server often drops the connection while powering off.
	if ctx.Err() != nil {
		result.Error = ctx.Err()
		return result, nil
	}
	s.logger.Warn().Err(result.Error).Str("output", result.Output).Msg("shutdown command returned error (may be expected)")
	result.Error = nil

	return result, nil
}

// TestConnection runs a no-op command to verify credentials.
func (s *Impl) TestConnection(ctx context.Context, cfg models.ShutdownConfig) (*models.SSHResult, error) {
	s.logger.Debug().Str("host", cfg.Host).Int("port", cfg.Port).Msg("testing SSH connection")

	result, err := s.run(ctx, cfg, "echo OK")
	if err == nil && result.CommandRun && result.Error != nil {
		result.Error = fmt.Errorf("test command failed: %w", result.Error)
	}
	return result, err
}
