package protocol

import (
	"encoding/binary"
	"io"
	"math"
)

// Decode parses data into values. data must be exactly TotalWidth bytes; each
// decoded value is checked against its field bounds.
func Decode(schema *CommandSchema, data []byte) (Values, error) {
	if len(data) != schema.width {
		return nil, &TruncatedPacketError{Schema: schema.name, Got: len(data), Want: schema.width}
	}
	values := make(Values, len(schema.fields))
	offset := 0
	for _, f := range schema.fields {
		raw := readField(data[offset:offset+f.width], f.width)
		offset += f.width

		if !f.signed && f.width == 8 && raw > math.MaxInt64 {
			return nil, &ValueRangeError{Schema: schema.name, Field: f.name, Raw: raw, Min: f.min, Max: f.max}
		}
		v := int64(raw)
		if f.signed {
			shift := uint(64 - 8*f.width)
			v = int64(raw<<shift) >> shift
		}
		if !f.Contains(v) {
			return nil, &ValueRangeError{Schema: schema.name, Field: f.name, Value: v, Min: f.min, Max: f.max}
		}
		values[f.name] = v
	}
	return values, nil
}

// Read consumes exactly TotalWidth bytes from r and decodes them.
func Read(r io.Reader, schema *CommandSchema) (Values, error) {
	buf := make([]byte, schema.width)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &TruncatedPacketError{Schema: schema.name, Got: n, Want: schema.width}
		}
		return nil, err
	}
	return Decode(schema, buf)
}

func readField(src []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(src))
	case 4:
		return uint64(binary.BigEndian.Uint32(src))
	default:
		return binary.BigEndian.Uint64(src)
	}
}
