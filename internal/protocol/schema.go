package protocol

import (
	"fmt"
	"sort"
)

// Direction distinguishes the request and response shapes of a command.
type Direction uint8

const (
	Request Direction = iota
	Response
)

func (d Direction) String() string {
	switch d {
	case Request:
		return "request"
	case Response:
		return "response"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "request"/"req" and "response"/"rsp"/"resp".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "request", "req":
		return Request, nil
	case "response", "rsp", "resp":
		return Response, nil
	default:
		return 0, fmt.Errorf("protocol: unknown direction %q", s)
	}
}

// Key identifies a schema inside a registry.
type Key struct {
	Peripheral uint8
	Command    uint8
	Direction  Direction
}

func (k Key) String() string {
	return fmt.Sprintf("pnum=0x%02X pcmd=0x%02X %s", k.Peripheral, k.Command, k.Direction)
}

func (k Key) less(o Key) bool {
	if k.Peripheral != o.Peripheral {
		return k.Peripheral < o.Peripheral
	}
	if k.Command != o.Command {
		return k.Command < o.Command
	}
	return k.Direction < o.Direction
}

// Values maps field names to integer values.
type Values map[string]int64

// CommandSchema is the fixed byte layout of one command in one direction.
// Field declaration order is wire order.
type CommandSchema struct {
	name   string
	key    Key
	fields []FieldSpec
	index  map[string]int
	width  int
}

// NewCommandSchema builds an immutable schema. An empty name defaults to the
// key's string form.
func NewCommandSchema(name string, key Key, fields ...FieldSpec) (*CommandSchema, error) {
	if name == "" {
		name = key.String()
	}
	if key.Direction != Request && key.Direction != Response {
		return nil, &SchemaError{Schema: name, Reason: fmt.Sprintf("invalid direction %d", key.Direction)}
	}
	s := &CommandSchema{
		name:   name,
		key:    key,
		fields: make([]FieldSpec, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.width == 0 {
			return nil, &SchemaError{Schema: name, Reason: fmt.Sprintf("field %d is not initialized", i)}
		}
		if _, dup := s.index[f.name]; dup {
			return nil, &SchemaError{Schema: name, Reason: fmt.Sprintf("duplicate field %q", f.name)}
		}
		s.fields[i] = f
		s.index[f.name] = i
		s.width += f.width
	}
	return s, nil
}

// MustCommandSchema is NewCommandSchema for static tables; it panics on error.
func MustCommandSchema(name string, key Key, fields ...FieldSpec) *CommandSchema {
	s, err := NewCommandSchema(name, key, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *CommandSchema) Name() string { return s.name }
func (s *CommandSchema) Key() Key { return s.key }
func (s *CommandSchema) Peripheral() uint8 { return s.key.Peripheral }
func (s *CommandSchema) Command() uint8 { return s.key.Command }
func (s *CommandSchema) Direction() Direction { return s.key.Direction }

// TotalWidth is the exact encoded length in bytes.
func (s *CommandSchema) TotalWidth() int { return s.width }

// Fields returns a copy of the fields in wire order.
func (s *CommandSchema) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the named field.
func (s *CommandSchema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// ValidateValues checks values against the schema: every declared field
// present, no undeclared keys, every value within bounds. Reported errors
// are deterministic: the first missing field in wire order, then the first
// unknown key in sorted order, then the first out-of-range field in wire order.
func (s *CommandSchema) ValidateValues(values Values) error {
	for _, f := range s.fields {
		if _, ok := values[f.name]; !ok {
			return &MissingFieldError{Schema: s.name, Field: f.name}
		}
	}
	if len(values) != len(s.fields) {
		unknown := make([]string, 0, len(values)-len(s.fields))
		for name := range values {
			if _, ok := s.index[name]; !ok {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		return &UnknownFieldError{Schema: s.name, Field: unknown[0]}
	}
	for _, f := range s.fields {
		if v := values[f.name]; !f.Contains(v) {
			return &ValueRangeError{Schema: s.name, Field: f.name, Value: v, Min: f.min, Max: f.max}
		}
	}
	return nil
}

func (s *CommandSchema) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", s.name, s.key, s.width)
}
