package models

import "time"

// Probe methods.
const (
	ProbePing = "ping"
	ProbeHTTP = "http"
	ProbeTCP  = "tcp"
)

// ProbeOptions controls a reachability poll.
type ProbeOptions struct {
	Method      string        // ping (default), http or tcp
	Timeout     time.Duration // per attempt
	MaxAttempts int
	Delay       time.Duration // between attempts; zero means back-to-back, DefaultOptions uses 1s
	TCPPort     int           // only used by the tcp method

	// OnAttempt, when set, is called before each attempt with the 1-based attempt number.
	OnAttempt func(attempt, maxAttempts int)
}

// ProbeOutcome holds the result of a reachability poll.
type ProbeOutcome struct {
	Host      string
	Reachable bool
	Attempts  int // attempts consumed, never more than MaxAttempts
	Duration  time.Duration
	Error     error
}
