package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"diskwise/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidMemory  = errors.New("invalid memory")
	ErrInvalidSession = errors.New("invalid session")
	ErrNotFound       = errors.New("not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateMemory validates a memory before it is appended.
func validateMemory(mem *model.Memory) error {
	if mem == nil {
		return fmt.Errorf("%w: memory", ErrNilParameter)
	}
	if mem.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidMemory)
	}
	if strings.TrimSpace(mem.Context) == "" {
		return fmt.Errorf("%w: missing context", ErrInvalidMemory)
	}
	if strings.TrimSpace(mem.Decision) == "" {
		return fmt.Errorf("%w: missing decision", ErrInvalidMemory)
	}
	if mem.ModelConfidence < 0 || mem.ModelConfidence > 1 {
		return fmt.Errorf("%w: confidence %f out of range", ErrInvalidMemory, mem.ModelConfidence)
	}
	return nil
}

// validateSession validates a session before it is persisted.
func validateSession(session *model.Session) error {
	if session == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSession)
	}
	if session.State == "" {
		return fmt.Errorf("%w: missing state", ErrInvalidSession)
	}
	return nil
}
