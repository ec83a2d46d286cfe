package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an offset or resource with no entry.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate registration.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnknownType signals a hit type with no class mapping.
	ErrUnknownType = errors.New("unknown type")
	// ErrConversion signals a hit that could not be turned into a domain object.
	ErrConversion = errors.New("conversion failed")
	// ErrInvalidMapping signals an invalid class descriptor or alias definition.
	ErrInvalidMapping = errors.New("invalid mapping")
)

// NotFoundError wraps ErrNotFound with the offset that was accessed.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: offset %s", ErrNotFound.Error(), e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a not-found error for the given offset.
func NewNotFound(key string) error {
	return &NotFoundError{Key: key}
}

// UnknownTypeError wraps ErrUnknownType with the unresolved type name.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownType.Error(), e.Type)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// NewUnknownType creates an unknown-type error.
func NewUnknownType(typeName string) error {
	return &UnknownTypeError{Type: typeName}
}

// ConversionError describes a failure to build a domain object from a hit.
// Field is empty when the failure is not tied to a single field.
type ConversionError struct {
	Type  string
	ID    string
	Field string
	Err   error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: type %q id %q", ErrConversion.Error(), e.Type, e.ID)
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConversion}
	}
	return []error{ErrConversion, e.Err}
}
