// Package config loads and saves the persisted user configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/hwaddr"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/spf13/viper"
)

// Location of the configuration document below the user config directory.
const (
	AppName  = "WOL_Magic_Packet_Sender"
	FileName = "config.json"
)

const (
	keyRouterIP = "router_ip"
	keyPort     = "port"
	keyMAC      = "mac"
)

// ErrConfigUnavailable wraps any failure to read or write the configuration document.
var ErrConfigUnavailable = errors.New("configuration unavailable")

// DefaultPath returns <user config dir>/WOL_Magic_Packet_Sender/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}
	return filepath.Join(dir, AppName, FileName), nil
}

// Store reads and writes the JSON configuration document.
type Store struct {
	path string
}

// NewStore creates a store backed by the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	def := models.DefaultAppConfig()
	v.SetDefault(keyRouterIP, def.RouterIP)
	v.SetDefault(keyPort, def.Port)
	v.SetDefault(keyMAC, def.MAC)
	return v
}

// Load reads the configuration. It always returns a usable configuration: a
// missing document yields the defaults with a nil error, an unreadable or
// corrupt one yields the defaults and an error wrapping ErrConfigUnavailable
// that callers may log and otherwise ignore.
func (s *Store) Load() (models.AppConfig, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return models.DefaultAppConfig(), nil
	}

	v := newViper()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return models.DefaultAppConfig(), fmt.Errorf("%w: reading %s: %w", ErrConfigUnavailable, s.path, err)
	}

	return parse(v), nil
}

// LoadReader parses a configuration document from a string (useful for testing).
func LoadReader(content string) (models.AppConfig, error) {
	v := newViper()
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return models.DefaultAppConfig(), fmt.Errorf("%w: reading config: %w", ErrConfigUnavailable, err)
	}
	return parse(v), nil
}

func parse(v *viper.Viper) models.AppConfig {
	return models.AppConfig{
		RouterIP: v.GetString(keyRouterIP),
		Port:     v.GetString(keyPort),
		MAC:      v.GetString(keyMAC),
	}
}

// Save validates and persists cfg, returning the stored form. The MAC is
// normalized first and an invalid one aborts the save without touching disk.
// The document is replaced atomically and its directory is created if needed.
func (s *Store) Save(cfg models.AppConfig) (models.AppConfig, error) {
	mac, err := hwaddr.Normalize(cfg.MAC)
	if err != nil {
		return cfg, err
	}

	cfg = models.AppConfig{
		RouterIP: strings.TrimSpace(cfg.RouterIP),
		Port:     strings.TrimSpace(cfg.Port),
		MAC:      mac,
	}

	if err := s.write(cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}
	return cfg, nil
}

func (s *Store) write(cfg models.AppConfig) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// viper picks the encoder from the extension, so the temp file must end in .json.
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))+".*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }() // no-op once renamed

	v := newViper()
	v.Set(keyRouterIP, cfg.RouterIP)
	v.Set(keyPort, cfg.Port)
	v.Set(keyMAC, cfg.MAC)

	if err := v.WriteConfigAs(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}
