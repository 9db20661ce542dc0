// Package apperr classifies errors crossing the intake engine's external
// boundaries so callers can tell transport trouble from bad input.
package apperr

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Class represents the classification of errors for handling purposes.
type Class int

const (
	// Transient errors are network or availability problems; the user may retry.
	Transient Class = iota
	// Invalid errors come from bad input or configuration.
	Invalid
	// Fatal errors are unrecoverable.
	Fatal
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Invalid:
		return "invalid"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var (
	ErrNoToken          = errors.New("auth token missing or expired")
	ErrUnknownKind      = errors.New("unknown intake kind")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionClosed    = errors.New("session closed")
	ErrCoercion         = errors.New("value coercion failed")
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownRecord    = errors.New("unknown sub-record")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// ClassifiedError wraps an error with its classification.
type ClassifiedError struct {
	Class     Class
	Err       error
	Message   string
	Component string
	Operation string
}

func (ce *ClassifiedError) Error() string {
	var b strings.Builder
	if ce.Component != "" {
		b.WriteString(ce.Component)
		if ce.Operation != "" {
			b.WriteString(".")
			b.WriteString(ce.Operation)
		}
		b.WriteString(": ")
	}
	if ce.Message != "" {
		b.WriteString(ce.Message)
		if ce.Err != nil {
			b.WriteString(": ")
		}
	}
	if ce.Err != nil {
		b.WriteString(ce.Err.Error())
	}
	return b.String()
}

func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

func wrap(class Class, err error, component, operation, message string) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// WrapTransient marks err as retry-eligible.
func WrapTransient(err error, component, operation, message string) error {
	return wrap(Transient, err, component, operation, message)
}

// WrapInvalid marks err as caused by bad input.
func WrapInvalid(err error, component, operation, message string) error {
	return wrap(Invalid, err, component, operation, message)
}

// WrapFatal marks err as unrecoverable.
func WrapFatal(err error, component, operation, message string) error {
	return wrap(Fatal, err, component, operation, message)
}

// ClassOf returns the classification of err. Unclassified network and
// deadline errors are reported as Transient, everything else as Fatal.
func ClassOf(err error) Class {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}
	return Fatal
}

// IsTransient checks if an error is transient and may be retried by the user.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return ClassOf(err) == Transient
}

// IsInvalid checks if an error was caused by invalid input.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	return ClassOf(err) == Invalid
}
