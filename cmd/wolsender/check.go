package main

import (
	"time"

	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/reach"
	"github.com/SeungHyeonBaek/WOLMagicPacketSender/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	checkAttempts int
	checkTimeout  time.Duration
	checkDelay    time.Duration
	checkMethod   string
	checkTCPPort  int
)

var checkCmd = &cobra.Command{
	Use:   "check HOST",
	Short: "Poll a host until it answers",
	Long: `Poll HOST until it responds or the attempts run out.

Methods:
  ping  one ICMP echo per attempt via the system ping command (default)
  http  any HTTP response counts as awake
  tcp   a completed TCP connection to --tcp-port counts as awake

Exits non-zero when the host never answered.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	def := reach.DefaultOptions()
	checkCmd.Flags().IntVarP(&checkAttempts, "attempts", "n", def.MaxAttempts, "maximum number of attempts")
	checkCmd.Flags().DurationVarP(&checkTimeout, "timeout", "t", def.Timeout, "timeout of a single attempt")
	checkCmd.Flags().DurationVarP(&checkDelay, "delay", "d", def.Delay, "pause between attempts")
	checkCmd.Flags().StringVar(&checkMethod, "method", def.Method, "probe method: ping, http or tcp")
	checkCmd.Flags().IntVar(&checkTCPPort, "tcp-port", def.TCPPort, "port used by the tcp method")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	opts := reach.DefaultOptions()
	opts.MaxAttempts = checkAttempts
	opts.Timeout = checkTimeout
	opts.Delay = checkDelay
	opts.Method = checkMethod
	opts.TCPPort = checkTCPPort

	ctx, cancel := signalContext()
	defer cancel()

	svc := runner.New(log.Logger, nil)
	return wakeCheck(ctx, svc, args[0], opts)
}
