package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the client matches exactly one of these
// with errors.Is.
var (
	// ErrConfiguration is returned for invalid construction parameters
	ErrConfiguration = errors.New("configuration error")
	// ErrVersionIncompatible is returned when the engine is older than supported
	ErrVersionIncompatible = errors.New("engine version incompatible")
	// ErrProtocol is returned for malformed or empty engine responses
	ErrProtocol = errors.New("protocol error")
	// ErrRemote is returned when a call fails in transport or is rejected by the engine
	ErrRemote = errors.New("remote operation failed")
	// ErrUsage is returned for caller mistakes detected before a remote call
	ErrUsage = errors.New("usage error")
	// ErrNotFound is returned when an engine-side resource does not exist
	ErrNotFound = errors.New("not found")
)

// Engine error codes that mean the addressed resource is already gone.
const (
	CodeDoesNotExist = "does_not_exist"
	CodeUserNotFound = "user_not_found"
)

// EngineError describes a failed engine operation
type EngineError struct {
	// Kind is one of the Err* sentinels
	Kind error
	// Component is the engine API component, e.g. "spider"
	Component string
	// Operation is the engine API operation, e.g. "scan"
	Operation string
	// Code is the engine error code when the engine reported one
	Code string
	// Err is the original cause
	Err error
}

func (e *EngineError) Error() string {
	msg := e.Kind.Error()
	if e.Component != "" {
		msg = fmt.Sprintf("%s: %s/%s", msg, e.Component, e.Operation)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *EngineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewConfigError creates a configuration error
func NewConfigError(format string, args ...interface{}) error {
	return &EngineError{Kind: ErrConfiguration, Err: fmt.Errorf(format, args...)}
}

// NewUsageError creates a caller usage error
func NewUsageError(format string, args ...interface{}) error {
	return &EngineError{Kind: ErrUsage, Err: fmt.Errorf(format, args...)}
}

// NewProtocolError creates a protocol error for a component operation
func NewProtocolError(component, operation string, cause error) error {
	return &EngineError{Kind: ErrProtocol, Component: component, Operation: operation, Err: cause}
}

// NewRemoteError creates a remote error for a component operation
func NewRemoteError(component, operation, code string, cause error) error {
	return &EngineError{Kind: ErrRemote, Component: component, Operation: operation, Code: code, Err: cause}
}

// NewNotFoundError creates a not-found error for a component operation
func NewNotFoundError(component, operation string, format string, args ...interface{}) error {
	return &EngineError{Kind: ErrNotFound, Component: component, Operation: operation, Err: fmt.Errorf(format, args...)}
}

// IsAbsent reports whether err is an engine rejection meaning the resource is
// already gone, which destructive operations treat as success.
func IsAbsent(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		return false
	}
	return engineErr.Code == CodeDoesNotExist || engineErr.Code == CodeUserNotFound
}
