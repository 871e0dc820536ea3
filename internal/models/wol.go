package models

import (
	"fmt"
	"time"
)

// TransmissionTarget is the host and ordered UDP ports a magic packet is sent to.
type TransmissionTarget struct {
	Host  string
	Ports []int
}

// PortResult holds the outcome of the send attempts on a single port.
type PortResult struct {
	Port      int
	Sent      int   // sends that wrote the full packet
	Attempted int   // sends tried
	Error     error // set when the port could not be used at all
}

// String renders the result as a human readable log line.
func (r PortResult) String() string {
	switch {
	case r.Error != nil:
		return fmt.Sprintf("Port %d: Error - %v", r.Port, r.Error)
	case r.Sent > 0:
		return fmt.Sprintf("Port %d: %d/%d transmission success", r.Port, r.Sent, r.Attempted)
	default:
		return fmt.Sprintf("Port %d: transmission failed", r.Port)
	}
}

// TransmissionResult holds the result of a magic packet transmission.
type TransmissionResult struct {
	MAC      string
	Target   TransmissionTarget
	Ports    []PortResult
	Success  bool // at least one port had a successful send
	Duration time.Duration
	Error    error
}

// Lines returns one diagnostic line per port, in transmission order.
func (r *TransmissionResult) Lines() []string {
	lines := make([]string, 0, len(r.Ports))
	for _, p := range r.Ports {
		lines = append(lines, p.String())
	}
	return lines
}
