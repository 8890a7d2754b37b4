package protocol

import (
	"encoding/binary"
	"io"
)

// Encode validates values against schema and serializes them as big-endian
// integers in field order. Nothing is produced unless validation succeeds.
func Encode(schema *CommandSchema, values Values) ([]byte, error) {
	if err := schema.ValidateValues(values); err != nil {
		return nil, err
	}
	buf := make([]byte, schema.width)
	offset := 0
	for _, f := range schema.fields {
		putField(buf[offset:offset+f.width], f.width, uint64(values[f.name]))
		offset += f.width
	}
	return buf, nil
}

// Write encodes values and writes the payload to w in a single call.
func Write(w io.Writer, schema *CommandSchema, values Values) error {
	buf, err := Encode(schema, values)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// putField stores the low width bytes of v. Two's complement falls out of the
// int64 to uint64 conversion for signed fields.
func putField(dst []byte, width int, v uint64) {
	switch width {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(dst, v)
	}
}
