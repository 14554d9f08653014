package arena

import "fmt"

// AddCharacterError reports that a character could not be added to the
// game. Already-added characters are unaffected.
type AddCharacterError struct {
	Name  string
	Cause error
}

func (e *AddCharacterError) Error() string {
	return fmt.Sprintf("character %s could not be added: %v", e.Name, e.Cause)
}

func (e *AddCharacterError) Unwrap() error {
	return e.Cause
}

// GameError wraps any failure that terminates a game run: a character
// addition failure or a runtime event failure. One misbehaving script
// aborts the whole match; there is no per-character quarantine.
type GameError struct {
	Cause error
}

func (e *GameError) Error() string {
	return fmt.Sprintf("game aborted: %v", e.Cause)
}

func (e *GameError) Unwrap() error {
	return e.Cause
}
