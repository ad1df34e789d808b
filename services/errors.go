package services

import "errors"

// Common service-level errors
var (
	ErrTimerRunning = errors.New("a time entry is already running")
	ErrNoOpenEntry  = errors.New("no running time entry")
	ErrUnauthorized = errors.New("unauthorized access")
)
