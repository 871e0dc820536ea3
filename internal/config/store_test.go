package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/hwaddr"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))

	saved, err := store.Save(models.AppConfig{
		RouterIP: "http://10.0.0.1/",
		Port:     "",
		MAC:      "AA:BB:CC:DD:EE:FF",
	})
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
	assert.Equal(t, "http://10.0.0.1/", loaded.RouterIP)
	assert.Equal(t, "", loaded.Port)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", loaded.MAC)
}

func TestStore_SaveNormalizesMAC(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))

	saved, err := store.Save(models.AppConfig{
		RouterIP: " http://192.168.0.1/ ",
		Port:     " 9 ",
		MAC:      "aa-bb-cc-dd-ee-ff",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppConfig{RouterIP: "http://192.168.0.1/", Port: "9", MAC: "AA:BB:CC:DD:EE:FF"}, saved)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", AppName, FileName)
	store := NewStore(path)

	_, err := store.Save(models.AppConfig{MAC: "AABBCCDDEEFF"})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_SaveAnyFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.conf")
	store := NewStore(path)

	_, err := store.Save(models.AppConfig{RouterIP: "http://10.0.0.1/", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"router_ip"`)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1/", loaded.RouterIP)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", loaded.MAC)
}

func TestStore_SaveInvalidMAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	store := NewStore(path)

	_, err := store.Save(models.AppConfig{RouterIP: "http://10.0.0.1/", MAC: "not-a-mac"})

	assert.ErrorIs(t, err, hwaddr.ErrInvalidAddress)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_SaveWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store := NewStore(filepath.Join(blocker, FileName))
	_, err := store.Save(models.AppConfig{MAC: "AA:BB:CC:DD:EE:FF"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigUnavailable)
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))

	cfg, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, models.DefaultAppConfig(), cfg)
	assert.Equal(t, "http://192.168.0.1/", cfg.RouterIP)
	assert.Equal(t, "", cfg.Port)
	assert.Equal(t, "", cfg.MAC)
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	cfg, err := NewStore(path).Load()

	assert.ErrorIs(t, err, ErrConfigUnavailable)
	assert.Equal(t, models.DefaultAppConfig(), cfg)
}

func TestLoadReader_PartialDocument(t *testing.T) {
	cfg, err := LoadReader(`{"mac": "AA:BB:CC:DD:EE:FF"}`)

	require.NoError(t, err)
	assert.Equal(t, "http://192.168.0.1/", cfg.RouterIP)
	assert.Equal(t, "", cfg.Port)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.MAC)
}

func TestLoadReader_AllKeys(t *testing.T) {
	cfg, err := LoadReader(`{
  "router_ip": "https://router.lan/",
  "port": "4000",
  "mac": "01:23:45:67:89:AB"
}`)

	require.NoError(t, err)
	assert.Equal(t, models.AppConfig{RouterIP: "https://router.lan/", Port: "4000", MAC: "01:23:45:67:89:AB"}, cfg)
}
