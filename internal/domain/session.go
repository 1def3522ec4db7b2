// Package domain contains entities without transport logic, just meta-data
package domain

import "github.com/google/uuid"

type SessionID string

// NewSessionID tags a session for log correlation.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}
