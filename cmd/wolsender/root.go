package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/config"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/models"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Global flags.
	configFile string
	logFile    string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "wolsender",
	Short: "Send Wake-on-LAN magic packets and confirm the target woke up",
	Long: `wolsender wakes a machine behind a router:
  - Sends a Wake-on-LAN magic packet over UDP (ports 7 and 9 by default)
  - Checks reachability of the woken host (ping, HTTP or TCP)
  - Remembers router address, port and MAC address between runs
  - Optionally shuts the machine down again over SSH

Run without a subcommand to open the interactive terminal UI.`,
	RunE:    runUI,
	Version: Version,
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging(isInteractive(cmd))
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (rotated)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(shutdownCmd)
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == uiCmd
}

// setupLogging configures the global logger. The interactive UI owns the
// terminal, so its logs only go to the rotating log file.
func setupLogging(interactive bool) {
	var writers []io.Writer

	if !interactive {
		if jsonOutput {
			writers = append(writers, os.Stderr)
		} else {
			output := zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "15:04:05",
				NoColor:    !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
			}
			output.FormatLevel = func(i interface{}) string {
				if s, ok := i.(string); ok {
					return strings.ToUpper(s)
				}
				return ""
			}
			writers = append(writers, output)
		}
	}

	path := logFile
	if path == "" && interactive {
		path = defaultLogPath()
	}
	if path != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	// Set log level
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, config.AppName, "wolsender.log")
}

// openStore returns the configuration store for --config or the default location.
func openStore() (*config.Store, error) {
	if configFile != "" {
		return config.NewStore(configFile), nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.NewStore(path), nil
}

// loadConfig reads the saved settings. An unreadable file is logged and the
// defaults are used.
func loadConfig(store *config.Store) models.AppConfig {
	cfg, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Str("file", store.Path()).Msg("using default settings")
	}
	return cfg
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
