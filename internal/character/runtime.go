package character

import "log"

// Runtime hosts one character's script or module. Implementations must
// be semantically interchangeable: same events in, same command
// vocabulary out, and unhandled event kinds answered with no commands
// rather than an error.
type Runtime interface {
	// OnEvent delivers one event and collects the commands it produced.
	// A failing script surfaces as *EventError; there is no retry.
	OnEvent(event Event) ([]Command, error)

	// Close releases interpreter or sandbox resources.
	Close() error
}

// EventError reports that a runtime failed to produce a valid response
// to an event.
type EventError struct {
	Character string
	Cause     error
}

func (e *EventError) Error() string {
	return "character " + e.Character + " failed to handle event: " + e.Cause.Error()
}

func (e *EventError) Unwrap() error {
	return e.Cause
}

// LogMessage prints a script log line attributed to a character.
func LogMessage(displayName, msg string) {
	log.Printf("[%s] %s", displayName, msg)
}
