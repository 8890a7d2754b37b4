package protocol

import (
	"fmt"
	"math"
	"strings"
)

// FieldSpec declares one fixed-width integer field. It is immutable once built.
type FieldSpec struct {
	name   string
	width  int
	signed bool
	min    int64
	max    int64
}

// NewField creates a field spanning the full range of its width and sign.
func NewField(name string, width int, signed bool) (FieldSpec, error) {
	lo, hi, err := widthBounds(name, width, signed)
	if err != nil {
		return FieldSpec{}, err
	}
	return newField(name, width, signed, lo, hi)
}

// NewBoundedField creates a field with inclusive bounds narrower than (or
// equal to) the range its width and sign allow.
func NewBoundedField(name string, width int, signed bool, min, max int64) (FieldSpec, error) {
	lo, hi, err := widthBounds(name, width, signed)
	if err != nil {
		return FieldSpec{}, err
	}
	if min > max {
		return FieldSpec{}, &FieldSpecError{Field: name, Reason: fmt.Sprintf("min %d greater than max %d", min, max)}
	}
	if min < lo || max > hi {
		return FieldSpec{}, &FieldSpecError{
			Field:  name,
			Reason: fmt.Sprintf("bounds [%d, %d] exceed %s range [%d, %d]", min, max, kindName(width, signed), lo, hi),
		}
	}
	return newField(name, width, signed, min, max)
}

func newField(name string, width int, signed bool, min, max int64) (FieldSpec, error) {
	if strings.TrimSpace(name) == "" {
		return FieldSpec{}, &FieldSpecError{Reason: "name is required"}
	}
	return FieldSpec{name: name, width: width, signed: signed, min: min, max: max}, nil
}

// widthBounds returns the representable range for width and sign. Unsigned
// 8-byte fields stop at math.MaxInt64 because values are carried as int64.
func widthBounds(name string, width int, signed bool) (int64, int64, error) {
	switch width {
	case 1, 2, 4:
		bits := uint(8 * width)
		if signed {
			return -(1 << (bits - 1)), 1<<(bits-1) - 1, nil
		}
		return 0, 1<<bits - 1, nil
	case 8:
		if signed {
			return math.MinInt64, math.MaxInt64, nil
		}
		return 0, math.MaxInt64, nil
	default:
		return 0, 0, &FieldSpecError{Field: name, Reason: fmt.Sprintf("width %d not in {1,2,4,8}", width)}
	}
}

func kindName(width int, signed bool) string {
	if signed {
		return fmt.Sprintf("int%d", 8*width)
	}
	return fmt.Sprintf("uint%d", 8*width)
}

func mustField(name string, width int, signed bool) FieldSpec {
	f, err := NewField(name, width, signed)
	if err != nil {
		panic(err)
	}
	return f
}

// U8 returns a full-range unsigned 1-byte field. It panics on an empty name.
func U8(name string) FieldSpec { return mustField(name, 1, false) }

// U16 returns a full-range unsigned 2-byte field.
func U16(name string) FieldSpec { return mustField(name, 2, false) }

// U32 returns a full-range unsigned 4-byte field.
func U32(name string) FieldSpec { return mustField(name, 4, false) }

// U64 returns an unsigned 8-byte field bounded by math.MaxInt64.
func U64(name string) FieldSpec { return mustField(name, 8, false) }

// I8 returns a full-range signed 1-byte field.
func I8(name string) FieldSpec { return mustField(name, 1, true) }

// I16 returns a full-range signed 2-byte field.
func I16(name string) FieldSpec { return mustField(name, 2, true) }

// I32 returns a full-range signed 4-byte field.
func I32(name string) FieldSpec { return mustField(name, 4, true) }

// I64 returns a full-range signed 8-byte field.
func I64(name string) FieldSpec { return mustField(name, 8, true) }

// Bounded narrows f to [min, max]. It panics if the bounds do not fit f's
// width, so it is meant for static tables.
func (f FieldSpec) Bounded(min, max int64) FieldSpec {
	out, err := NewBoundedField(f.name, f.width, f.signed, min, max)
	if err != nil {
		panic(err)
	}
	return out
}

func (f FieldSpec) Name() string { return f.name }
func (f FieldSpec) Width() int { return f.width }
func (f FieldSpec) Signed() bool { return f.signed }
func (f FieldSpec) Min() int64 { return f.min }
func (f FieldSpec) Max() int64 { return f.max }

// Contains reports whether v lies inside the field bounds.
func (f FieldSpec) Contains(v int64) bool {
	return v >= f.min && v <= f.max
}

func (f FieldSpec) String() string {
	return fmt.Sprintf("%s:%s[%d..%d]", f.name, kindName(f.width, f.signed), f.min, f.max)
}
