// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for precondition failures
var (
	ErrInvalidState     = errors.New("invalid state")
	ErrMissingName      = errors.New("vrf name is required")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrValidationFailed = errors.New("validation failed")
	ErrNotConnected     = errors.New("device not connected")
	ErrUnknownParser    = errors.New("unknown parser")
	ErrPermissionDenied = errors.New("permission denied")
)

// DuplicateKeyError reports a VRF or address family that appears more than
// once in the same input. AFI is empty when the VRF name itself repeats.
type DuplicateKeyError struct {
	VRF  string
	AFI  string
	SAFI string
}

func (e *DuplicateKeyError) Error() string {
	if e.AFI == "" {
		return fmt.Sprintf("duplicate vrf %q", e.VRF)
	}
	af := e.AFI
	if e.SAFI != "" {
		af += " " + e.SAFI
	}
	return fmt.Sprintf("duplicate address-family %q in vrf %q", af, e.VRF)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// NewDuplicateKeyError creates a duplicate key error
func NewDuplicateKeyError(vrf, afi, safi string) *DuplicateKeyError {
	return &DuplicateKeyError{VRF: vrf, AFI: afi, SAFI: safi}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
