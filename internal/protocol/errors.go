package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFieldSpec = errors.New("protocol: invalid field spec")
	ErrInvalidSchema    = errors.New("protocol: invalid command schema")
	ErrMissingField     = errors.New("protocol: missing field")
	ErrUnknownField     = errors.New("protocol: unknown field")
	ErrValueRange       = errors.New("protocol: value out of range")
	ErrTruncatedPacket  = errors.New("protocol: truncated packet")
	ErrDuplicateSchema  = errors.New("protocol: duplicate schema")
	ErrUnknownCommand   = errors.New("protocol: unknown command")
)

// FieldSpecError describes why a field definition was rejected.
type FieldSpecError struct {
	Field  string
	Reason string
}

func (e *FieldSpecError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("protocol: invalid field spec: %s", e.Reason)
	}
	return fmt.Sprintf("protocol: invalid field spec %q: %s", e.Field, e.Reason)
}

func (e *FieldSpecError) Unwrap() error { return ErrInvalidFieldSpec }

// SchemaError describes why a command schema was rejected.
type SchemaError struct {
	Schema string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("protocol: invalid schema %s: %s", e.Schema, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrInvalidSchema }

// MissingFieldError indicates a declared field had no value.
type MissingFieldError struct {
	Schema string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("protocol: %s: missing field %q", e.Schema, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// UnknownFieldError indicates a value was supplied for an undeclared field.
type UnknownFieldError struct {
	Schema string
	Field  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("protocol: %s: unknown field %q", e.Schema, e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// ValueRangeError indicates a value outside its field bounds. Raw is set
// instead of Value when a decoded unsigned 8-byte value does not fit in int64.
type ValueRangeError struct {
	Schema string
	Field  string
	Value  int64
	Raw    uint64
	Min    int64
	Max    int64
}

func (e *ValueRangeError) Error() string {
	if e.Raw != 0 {
		return fmt.Sprintf("protocol: %s: field %q value %d outside [%d, %d]", e.Schema, e.Field, e.Raw, e.Min, e.Max)
	}
	return fmt.Sprintf("protocol: %s: field %q value %d outside [%d, %d]", e.Schema, e.Field, e.Value, e.Min, e.Max)
}

func (e *ValueRangeError) Unwrap() error { return ErrValueRange }

// TruncatedPacketError indicates a payload whose length does not match the schema.
type TruncatedPacketError struct {
	Schema string
	Got    int
	Want   int
}

func (e *TruncatedPacketError) Error() string {
	return fmt.Sprintf("protocol: %s: packet length %d, want %d", e.Schema, e.Got, e.Want)
}

func (e *TruncatedPacketError) Unwrap() error { return ErrTruncatedPacket }

// DuplicateSchemaError indicates a second registration for the same key.
type DuplicateSchemaError struct {
	Key Key
}

func (e *DuplicateSchemaError) Error() string {
	return fmt.Sprintf("protocol: duplicate schema for %s", e.Key)
}

func (e *DuplicateSchemaError) Unwrap() error { return ErrDuplicateSchema }

// UnknownCommandError indicates a lookup for an unregistered key.
type UnknownCommandError struct {
	Key Key
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("protocol: no schema registered for %s", e.Key)
}

func (e *UnknownCommandError) Unwrap() error { return ErrUnknownCommand }
