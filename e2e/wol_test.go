//go:build e2e

package e2e

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/config"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/hwaddr"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/reach"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/wol"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func listenUDP(t *testing.T) (*net.UDPConn, int) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, conn.LocalAddr().(*net.UDPAddr).Port
}

func TestWOL_LoopbackDelivery_E2E(t *testing.T) {
	conn, port := listenUDP(t)

	mac, err := hwaddr.Parse("aa-bb-cc-dd-ee-ff")
	require.NoError(t, err)
	want, err := wol.MagicPacket(mac)
	require.NoError(t, err)

	svc := wol.New(testLogger())
	result, err := svc.Send(context.Background(), "aa-bb-cc-dd-ee-ff", "http://127.0.0.1/", strconv.Itoa(port))

	require.NoError(t, err)
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	require.Len(t, result.Ports, 1)
	assert.Equal(t, 3, result.Ports[0].Sent)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	for i := 0; i < 3; i++ {
		n, _, err := conn.ReadFromUDP(buf)
		require.NoError(t, err)
		assert.Equal(t, wol.MagicPacketSize, n)
		assert.Equal(t, want, buf[:n])
	}
}

func TestRunner_SaveTransmitCheck_E2E(t *testing.T) {
	conn, port := listenUDP(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	store := config.NewStore(t.TempDir() + "/" + config.FileName)
	svc := runner.New(testLogger(), store)
	ctx := context.Background()

	saved, err := svc.Save(ctx, models.AppConfig{
		RouterIP: "127.0.0.1",
		Port:     strconv.Itoa(port),
		MAC:      "aabbccddeeff",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", saved.MAC)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	var kinds []models.EventKind
	events := runner.Start(ctx, func(ctx context.Context, events chan<- models.Event) {
		_, err = svc.Transmit(ctx, loaded, events)
	})
	for ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	require.NoError(t, err)
	assert.Contains(t, kinds, models.EventSuccess)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, wol.MagicPacketSize, n)

	opts := reach.DefaultOptions()
	opts.Method = models.ProbeHTTP
	opts.Delay = 10 * time.Millisecond
	outcome, err := svc.WakeCheck(ctx, server.URL, opts, nil)
	require.NoError(t, err)
	assert.True(t, outcome.Reachable)
	assert.Equal(t, 1, outcome.Attempts)
}

func TestReach_TCPClosedPort_E2E(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	svc := reach.New(testLogger())
	outcome, err := svc.Check(context.Background(), "127.0.0.1", models.ProbeOptions{
		Method:      models.ProbeTCP,
		Timeout:     200 * time.Millisecond,
		MaxAttempts: 3,
		Delay:       10 * time.Millisecond,
		TCPPort:     port,
	})

	require.NoError(t, err)
	assert.False(t, outcome.Reachable)
	assert.Equal(t, 3, outcome.Attempts)
	assert.ErrorIs(t, outcome.Error, reach.ErrProbeExhausted)
}

// Sends a real packet; only runs when a target is configured.
func TestRealWOL_E2E(t *testing.T) {
	mac := os.Getenv("TEST_WOL_MAC")
	if mac == "" {
		t.Skip("TEST_WOL_MAC not set")
	}
	host := os.Getenv("TEST_WOL_HOST")
	if host == "" {
		host = "255.255.255.255"
	}

	svc := wol.New(testLogger())
	result, err := svc.Send(context.Background(), mac, host, os.Getenv("TEST_WOL_PORT"))

	require.NoError(t, err)
	assert.True(t, result.Success)

	checkHost := os.Getenv("TEST_WOL_CHECK_HOST")
	if checkHost == "" {
		return
	}
	opts := reach.DefaultOptions()
	opts.MaxAttempts = 60
	outcome, err := reach.New(testLogger()).Check(context.Background(), checkHost, opts)
	require.NoError(t, err)
	assert.True(t, outcome.Reachable)
}
