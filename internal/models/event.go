package models

// EventKind classifies a workflow event.
type EventKind int

// Workflow event kinds.
const (
	EventLog EventKind = iota
	EventProgress
	EventSuccess
	EventFailure
)

// Action names reported on events.
const (
	ActionSave     = "save"
	ActionTransmit = "transmit"
	ActionCheck    = "check"
)

// Event is published by a background workflow for the front end to render.
type Event struct {
	Kind     EventKind
	Action   string
	Message  string
	Progress int // percent, only meaningful for EventProgress
	Err      error
}
