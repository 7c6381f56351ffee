// Package provider holds Translator implementations that can stand in for
// the remote translation API.
package provider

import (
	"fmt"

	"github.com/ZaguanLabs/i18nbackend"
)

// Translator is the interface the Backend uses for on-demand translation.
// This is an alias to the main package interface for convenience.
type Translator = i18nbackend.Translator

// TranslateRequest is an alias to the main package type.
type TranslateRequest = i18nbackend.TranslateRequest

// Resource is an alias to the main package type.
type Resource = i18nbackend.Resource

// Error indicates a translation provider call failed.
type Error struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KeyMismatchError indicates the provider dropped keys of the source namespace.
type KeyMismatchError struct {
	Missing []string
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("translation is missing %d key(s): %v", len(e.Missing), e.Missing)
}
