// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag

import (
	"errors"
	"fmt"
)

// Error types for RAG operations.
var (
	// ErrCorpusNotFound indicates that a display-name lookup matched no corpus.
	ErrCorpusNotFound = errors.New("corpus not found")

	// ErrConfiguration indicates a missing or invalid required identifier.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrRemoteService indicates a backend failure that survived the retry
	// policy.
	ErrRemoteService = errors.New("remote service error")
)

// Error carries the error code and operation context for a failed RAG call.
type Error struct {
	// Code is the error code.
	Code string `json:"code"`

	// Message is the error message.
	Message string `json:"message"`

	// Operation is the operation that failed (e.g. "create corpus").
	Operation string `json:"operation,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Operation != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Operation, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Operation != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Operation, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error.
func (e *Error) Is(target error) bool {
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// NewCorpusNotFoundError creates a corpus not found error for a display name.
func NewCorpusNotFoundError(displayName string) *Error {
	return &Error{
		Code:    "CORPUS_NOT_FOUND",
		Message: fmt.Sprintf("no corpus with display name %q", displayName),
		Err:     ErrCorpusNotFound,
	}
}

// NewConfigurationError creates a configuration error for a missing or
// invalid field.
func NewConfigurationError(field, reason string) *Error {
	return &Error{
		Code:    "INVALID_CONFIGURATION",
		Message: fmt.Sprintf("%s: %s", field, reason),
		Err:     ErrConfiguration,
	}
}

// NewRemoteServiceError wraps a backend failure after retries are exhausted.
// The underlying error is preserved unchanged for the caller.
func NewRemoteServiceError(operation string, err error) *Error {
	return &Error{
		Code:      "REMOTE_SERVICE_ERROR",
		Message:   "backend request failed",
		Operation: operation,
		Err:       fmt.Errorf("%w: %w", ErrRemoteService, err),
	}
}

// IsNotFound reports whether err indicates a failed corpus lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCorpusNotFound)
}

// IsConfiguration reports whether err indicates invalid local configuration.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsRemoteService reports whether err indicates a backend failure.
func IsRemoteService(err error) bool {
	return errors.Is(err, ErrRemoteService)
}
