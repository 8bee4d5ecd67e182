package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when the configured council file does
	// not exist on disk.
	ErrConfigNotFound = errors.New("config: council file not found")
	// ErrInvalidYAML is returned when the council file cannot be parsed.
	ErrInvalidYAML = errors.New("config: invalid yaml")
	// ErrValidationFailed is returned when ValidateAll rejects the loaded
	// config.
	ErrValidationFailed = errors.New("config: validation failed")
	// ErrMemberNotFound is returned by MemberRegistry.Get for an unknown id.
	ErrMemberNotFound = errors.New("config: member not found")
	// ErrPhaseNotFound is returned by PhaseRegistry.Get for an unknown id.
	ErrPhaseNotFound = errors.New("config: phase not found")
)

// ValidationError reports a single invalid field on a named component
// (a member, a phase, or the council as a whole).
type ValidationError struct {
	Component string // "member", "phase", "council"
	ID        string // the member or phase id; empty for council-level errors
	Field     string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: field %q: %v", e.Component, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: field %q: %v", e.Component, e.ID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError constructs a ValidationError.
func NewValidationError(component, id, field string, err error) *ValidationError {
	return &ValidationError{Component: component, ID: id, Field: field, Err: err}
}

// LoadError reports a failure to read or parse a specific config file.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError constructs a LoadError.
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}
