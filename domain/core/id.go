package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RunID identifies one pipeline execution. It is a UUIDv7, so IDs sort by
// creation time and double as the primary key of persisted runs.
type RunID string

// NewRunID creates a time-ordered run identifier
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

// ParseRunID validates s as a UUID
func ParseRunID(s string) (RunID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(id.String()), nil
}

func (id RunID) String() string { return string(id) }

// IsEmpty reports whether the ID is unset
func (id RunID) IsEmpty() bool { return id == "" }
