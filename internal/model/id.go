package model

import "github.com/google/uuid"

// NewID creates a new process-unique node ID.
func NewID() string {
	return uuid.New().String()
}
