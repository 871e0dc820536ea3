package reach

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
)

// Prober performs a single reachability probe. A nil error means the host answered.
type Prober interface {
	Probe(ctx context.Context, host string, opts models.ProbeOptions) error
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// Execute runs a command and returns its combined output.
func (e *DefaultExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// PingProber probes with the operating system's ping utility.
type PingProber struct {
	executor CommandExecutor
	goos     string
}

// NewPingProber creates a ping prober for the running platform.
func NewPingProber() *PingProber {
	return &PingProber{executor: &DefaultExecutor{}, goos: runtime.GOOS}
}

// NewPingProberWithExecutor creates a ping prober with a custom executor and platform (for testing).
func NewPingProberWithExecutor(executor CommandExecutor, goos string) *PingProber {
	return &PingProber{executor: executor, goos: goos}
}

// PingArgs returns the arguments for a single echo request to host on goos.
func PingArgs(goos, host string, timeout time.Duration) []string {
	ms := timeout.Milliseconds()
	switch goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), host}
	case "darwin":
		// BSD ping takes -W in milliseconds.
		return []string{"-c", "1", "-W", strconv.FormatInt(ms, 10), host}
	default:
		secs := ms / 1000
		if secs < 1 {
			secs = 1
		}
		return []string{"-c", "1", "-W", strconv.FormatInt(secs, 10), host}
	}
}

// Probe runs ping once. Exit status zero means reachable.
func (p *PingProber) Probe(ctx context.Context, host string, opts models.ProbeOptions) error {
	output, err := p.executor.Execute(ctx, "ping", PingArgs(p.goos, host, opts.Timeout)...)
	if err != nil {
		return fmt.Errorf("ping %s: %w, output: %s", host, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPProber treats any HTTP response as proof that the host is up.
type HTTPProber struct {
	httpClient HTTPClient
}

// NewHTTPProber creates an HTTP prober.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{httpClient: &http.Client{}}
}

// NewHTTPProberWithClient creates an HTTP prober with a custom client (for testing).
func NewHTTPProberWithClient(client HTTPClient) *HTTPProber {
	return &HTTPProber{httpClient: client}
}

// Probe issues a GET against host, which may be a bare host or a URL.
func (p *HTTPProber) Probe(ctx context.Context, host string, opts models.ProbeOptions) error {
	target := host
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "http://" + target
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// TCPProber connects to a TCP port on the host.
type TCPProber struct {
	dialer *net.Dialer
}

// NewTCPProber creates a TCP prober.
func NewTCPProber() *TCPProber {
	return &TCPProber{dialer: &net.Dialer{}}
}

// Probe opens and immediately closes a TCP connection.
func (p *TCPProber) Probe(ctx context.Context, host string, opts models.ProbeOptions) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(opts.TCPPort)))
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
