package reach

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExecutor struct {
	executeFunc func(ctx context.Context, name string, args ...string) ([]byte, error)
	lastName    string
	lastArgs    []string
}

func (m *mockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.lastName = name
	m.lastArgs = args
	if m.executeFunc != nil {
		return m.executeFunc(ctx, name, args...)
	}
	return []byte("1 packets transmitted, 1 received"), nil
}

type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func TestPingArgs(t *testing.T) {
	assert.Equal(t, []string{"-n", "1", "-w", "1000", "10.0.0.5"}, PingArgs("windows", "10.0.0.5", time.Second))
	assert.Equal(t, []string{"-c", "1", "-W", "1", "10.0.0.5"}, PingArgs("linux", "10.0.0.5", time.Second))
	assert.Equal(t, []string{"-c", "1", "-W", "1", "10.0.0.5"}, PingArgs("linux", "10.0.0.5", 200*time.Millisecond))
	assert.Equal(t, []string{"-c", "1", "-W", "3", "10.0.0.5"}, PingArgs("linux", "10.0.0.5", 3500*time.Millisecond))
	assert.Equal(t, []string{"-c", "1", "-W", "1000", "10.0.0.5"}, PingArgs("darwin", "10.0.0.5", time.Second))
}

func TestPingProber_Success(t *testing.T) {
	exec := &mockExecutor{}
	p := NewPingProberWithExecutor(exec, "linux")

	err := p.Probe(context.Background(), "10.0.0.5", models.ProbeOptions{Timeout: time.Second})

	require.NoError(t, err)
	assert.Equal(t, "ping", exec.lastName)
	assert.Equal(t, []string{"-c", "1", "-W", "1", "10.0.0.5"}, exec.lastArgs)
}

func TestPingProber_NonZeroExit(t *testing.T) {
	exec := &mockExecutor{
		executeFunc: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("Destination Host Unreachable"), errors.New("exit status 1")
		},
	}
	p := NewPingProberWithExecutor(exec, "windows")

	err := p.Probe(context.Background(), "10.0.0.5", models.ProbeOptions{Timeout: time.Second})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Contains(t, err.Error(), "Destination Host Unreachable")
	assert.Equal(t, []string{"-n", "1", "-w", "1000", "10.0.0.5"}, exec.lastArgs)
}

func TestHTTPProber_AnyResponseIsReachable(t *testing.T) {
	var gotURL string
	client := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			gotURL = req.URL.String()
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       io.NopCloser(strings.NewReader("")),
			}, nil
		},
	}
	p := NewHTTPProberWithClient(client)

	err := p.Probe(context.Background(), "192.168.0.100:8000", models.ProbeOptions{Timeout: time.Second})

	require.NoError(t, err)
	assert.Equal(t, "http://192.168.0.100:8000", gotURL)
}

func TestHTTPProber_ConnectionRefused(t *testing.T) {
	client := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	p := NewHTTPProberWithClient(client)

	err := p.Probe(context.Background(), "https://nas.lan", models.ProbeOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPProber_RealServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewHTTPProberWithClient(server.Client())

	require.NoError(t, p.Probe(context.Background(), server.URL, models.ProbeOptions{Timeout: time.Second}))
}

func TestTCPProber(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	p := NewTCPProber()

	err = p.Probe(context.Background(), "127.0.0.1", models.ProbeOptions{Timeout: time.Second, TCPPort: port})
	require.NoError(t, err)

	_ = ln.Close()
	err = p.Probe(context.Background(), "127.0.0.1", models.ProbeOptions{Timeout: time.Second, TCPPort: port})
	assert.Error(t, err, "closed port "+strconv.Itoa(port))
}
