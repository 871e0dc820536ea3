//go:build e2e

package e2e

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/ssh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cryptossh "golang.org/x/crypto/ssh"
)

// shutdownTarget reads the machine to power off from the environment.
func shutdownTarget(t *testing.T) models.ShutdownConfig {
	t.Helper()

	host := os.Getenv("TEST_SSH_HOST")
	keyPath := os.Getenv("TEST_SSH_KEY_PATH")
	if host == "" || keyPath == "" {
		t.Skip("TEST_SSH_HOST or TEST_SSH_KEY_PATH not set")
	}

	port := 22
	if s := os.Getenv("TEST_SSH_PORT"); s != "" {
		var err error
		port, err = strconv.Atoi(s)
		require.NoError(t, err)
	}

	user := os.Getenv("TEST_SSH_USER")
	if user == "" {
		user = "root"
	}

	return models.ShutdownConfig{
		Host:          host,
		Port:          port,
		Username:      user,
		KeyPath:       keyPath,
		ShutdownDelay: 60, // minutes, leaves time to cancel
		OS:            os.Getenv("TEST_SSH_OS"),
	}
}

func writeKeyFile(t *testing.T) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := cryptossh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path
}

func TestSSHTestConnection_E2E(t *testing.T) {
	cfg := shutdownTarget(t)

	result, err := ssh.New(testLogger()).TestConnection(context.Background(), cfg)

	require.NoError(t, err)
	require.NoError(t, result.Error)
	assert.True(t, result.CommandRun)
	assert.Contains(t, result.Output, "OK")
}

func TestSSHRefused_E2E(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := models.ShutdownConfig{
		Host:     "127.0.0.1",
		Port:     port,
		Username: "root",
		KeyPath:  writeKeyFile(t),
	}

	result, err := ssh.New(testLogger()).Shutdown(context.Background(), cfg)

	require.NoError(t, err)
	assert.False(t, result.CommandRun)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "failed to connect")
}

func TestSSHUnroutable_E2E(t *testing.T) {
	cfg := models.ShutdownConfig{
		Host:     "192.0.2.1", // TEST-NET-1
		Port:     22,
		Username: "root",
		KeyPath:  writeKeyFile(t),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := ssh.New(testLogger()).TestConnection(ctx, cfg)

	require.NoError(t, err)
	assert.False(t, result.CommandRun)
	assert.Error(t, result.Error)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// Powers the target off. Only runs when explicitly enabled.
func TestSSHShutdown_E2E(t *testing.T) {
	if os.Getenv("TEST_SSH_SHUTDOWN_ENABLED") != "true" {
		t.Skip("TEST_SSH_SHUTDOWN_ENABLED is not true")
	}
	cfg := shutdownTarget(t)

	result, err := ssh.New(testLogger()).Shutdown(context.Background(), cfg)

	require.NoError(t, err)
	assert.True(t, result.CommandRun)
	assert.NoError(t, result.Error)
}
