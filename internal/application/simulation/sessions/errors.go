package sessions

import "fmt"

// ErrSessionNotFound indicates an unknown or already closed session id
type ErrSessionNotFound struct {
	SessionID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// ErrSessionLimit indicates the manager already holds its maximum number of sessions
type ErrSessionLimit struct {
	Max int
}

func (e *ErrSessionLimit) Error() string {
	return fmt.Sprintf("session limit reached: %d sessions open", e.Max)
}
