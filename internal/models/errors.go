package models

import (
	"encoding/json"
	"errors"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	// ErrNotFound means no source records matched the location and period.
	ErrNotFound ErrorKind = "not_found"
	// ErrTransportFailure is a timeout or request failure talking to the source.
	// The BCB client recovers it locally; it is never returned past that boundary.
	ErrTransportFailure ErrorKind = "transport_failure"
	// ErrInvalidInput covers unknown stage names, bad location kinds and missing arguments.
	ErrInvalidInput ErrorKind = "invalid_input"
	// ErrUpstream means a stage received an error instead of valid data.
	ErrUpstream ErrorKind = "upstream_error"
	// ErrFatal is any unexpected failure caught at the orchestrator boundary.
	ErrFatal ErrorKind = "fatal"
)

// Error is the structured error value returned by every stage.
type Error struct {
	Kind    ErrorKind
	Stage   StageName
	Message string
	Cause   error
}

// NewError creates a stage error without a cause.
func NewError(kind ErrorKind, stage StageName, message string) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message}
}

// WrapError creates a stage error referencing its cause.
func WrapError(kind ErrorKind, stage StageName, message string, cause error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithStage returns a copy tagged with the given stage.
func (e *Error) WithStage(stage StageName) *Error {
	c := *e
	c.Stage = stage
	return &c
}

type errorJSON struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Stage   StageName `json:"stage,omitempty" yaml:"stage,omitempty"`
	Message string    `json:"error" yaml:"error"`
	Cause   string    `json:"cause,omitempty" yaml:"cause,omitempty"`
}

func (e *Error) view() errorJSON {
	v := errorJSON{Kind: e.Kind, Stage: e.Stage, Message: e.Message}
	if e.Cause != nil {
		v.Cause = e.Cause.Error()
	}
	return v
}

// MarshalJSON renders the error as {"kind","stage","error","cause"}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.view())
}

// MarshalYAML mirrors MarshalJSON.
func (e *Error) MarshalYAML() (interface{}, error) {
	return e.view(), nil
}

// AsError extracts a *Error from err. Errors of any other type are reported as fatal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(ErrFatal, "", "erro inesperado", err)
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
