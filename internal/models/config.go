// Package models contains the data structures used throughout wolsender.
package models

// Built-in configuration defaults.
const (
	DefaultRouterIP = "http://192.168.0.1/"
	DefaultPingHost = "192.168.0.100"
)

// AppConfig holds the persisted user configuration.
type AppConfig struct {
	RouterIP string // router or target address, may carry an http(s) scheme
	Port     string // empty means the default port set
	MAC      string // last validated hardware address
}

// DefaultAppConfig returns the configuration used when nothing is stored.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		RouterIP: DefaultRouterIP,
	}
}
