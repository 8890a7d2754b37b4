package protocol

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/danmuck/pcodec/internal/testutil/testlog"
)

func retrySchema(t *testing.T) *CommandSchema {
	t.Helper()
	s, err := NewCommandSchema("test.retry", Key{Peripheral: 0x00, Command: 0x04, Direction: Request},
		U8("addr"),
		U8("retries"),
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func mixedSchema(t *testing.T) *CommandSchema {
	t.Helper()
	s, err := NewCommandSchema("test.mixed", Key{Peripheral: 0x20, Command: 0x01, Direction: Response},
		U8("flags"),
		I16("temperature"),
		U32("uptime"),
		I64("offset"),
		U64("counter"),
		I8("delta"),
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func TestEncodeDecodeAddrRetries(t *testing.T) {
	testlog.Start(t)
	s := retrySchema(t)

	out, err := Encode(s, Values{"addr": 5, "retries": 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(out, []byte{0x05, 0x03}) {
		t.Fatalf("unexpected bytes: % x", out)
	}

	values, err := Decode(s, []byte{0x05, 0x03})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Values{"addr": 5, "retries": 3}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("decoded %v, want %v", values, want)
	}
}

func TestRoundTripMixedWidths(t *testing.T) {
	testlog.Start(t)
	s := mixedSchema(t)
	cases := []Values{
		{"flags": 0, "temperature": 0, "uptime": 0, "offset": 0, "counter": 0, "delta": 0},
		{"flags": 255, "temperature": -1, "uptime": math.MaxUint32, "offset": math.MinInt64, "counter": math.MaxInt64, "delta": -128},
		{"flags": 7, "temperature": math.MinInt16, "uptime": 86400, "offset": math.MaxInt64, "counter": 1, "delta": 127},
		{"flags": 128, "temperature": math.MaxInt16, "uptime": 1, "offset": -42, "counter": 1 << 40, "delta": -1},
	}
	for _, in := range cases {
		buf, err := Encode(s, in)
		if err != nil {
			t.Fatalf("encode %v: %v", in, err)
		}
		if len(buf) != s.TotalWidth() {
			t.Fatalf("encoded length %d, want %d", len(buf), s.TotalWidth())
		}
		out, err := Decode(s, buf)
		if err != nil {
			t.Fatalf("decode %v: %v", in, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("round-trip mismatch: in=%v out=%v", in, out)
		}
	}
}

func TestEncodeBigEndianTwosComplement(t *testing.T) {
	testlog.Start(t)
	s := MustCommandSchema("test.layout", Key{Peripheral: 1, Command: 2},
		I16("a"),
		U32("b"),
		I8("c"),
	)
	out, err := Encode(s, Values{"a": -2, "b": 0x01020304, "c": -128})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0xFF, 0xFE, 0x01, 0x02, 0x03, 0x04, 0x80}
	if !bytes.Equal(out, want) {
		t.Fatalf("got % x, want % x", out, want)
	}
}

func TestTotalWidth(t *testing.T) {
	testlog.Start(t)
	if w := mixedSchema(t).TotalWidth(); w != 1+2+4+8+8+1 {
		t.Fatalf("unexpected width %d", w)
	}
	empty := MustCommandSchema("test.empty", Key{Peripheral: 6, Command: 1})
	if empty.TotalWidth() != 0 {
		t.Fatalf("empty schema width %d", empty.TotalWidth())
	}
	out, err := Encode(empty, Values{})
	if err != nil || len(out) != 0 {
		t.Fatalf("empty encode: %v % x", err, out)
	}
	values, err := Decode(empty, nil)
	if err != nil || len(values) != 0 {
		t.Fatalf("empty decode: %v %v", err, values)
	}
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	testlog.Start(t)
	s := retrySchema(t)
	out, err := Encode(s, Values{"addr": 256, "retries": 3})
	if !errors.Is(err, ErrValueRange) {
		t.Fatalf("expected ErrValueRange, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no output on failure, got % x", out)
	}
	var re *ValueRangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected ValueRangeError, got %T", err)
	}
	if re.Field != "addr" || re.Value != 256 || re.Max != 255 {
		t.Fatalf("unexpected range error: %+v", re)
	}

	if _, err := Encode(s, Values{"addr": -1, "retries": 3}); !errors.Is(err, ErrValueRange) {
		t.Fatalf("expected ErrValueRange for negative, got %v", err)
	}
}

func TestEncodeRejectsMaxPlusOneForEveryWidth(t *testing.T) {
	testlog.Start(t)
	fields := []FieldSpec{U8("u8"), U16("u16"), U32("u32"), I8("i8"), I16("i16"), I32("i32")}
	for _, f := range fields {
		s := MustCommandSchema("test."+f.Name(), Key{Peripheral: 9}, f)
		if _, err := Encode(s, Values{f.Name(): f.Max()}); err != nil {
			t.Fatalf("%s: max rejected: %v", f, err)
		}
		if _, err := Encode(s, Values{f.Name(): f.Max() + 1}); !errors.Is(err, ErrValueRange) {
			t.Fatalf("%s: expected ErrValueRange for max+1, got %v", f, err)
		}
		if _, err := Encode(s, Values{f.Name(): f.Min() - 1}); !errors.Is(err, ErrValueRange) {
			t.Fatalf("%s: expected ErrValueRange for min-1, got %v", f, err)
		}
	}
}

func TestValidateValuesMissingField(t *testing.T) {
	testlog.Start(t)
	s := retrySchema(t)
	err := s.ValidateValues(Values{"addr": 1})
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "retries" || !errors.Is(err, ErrMissingField) {
		t.Fatalf("unexpected missing error: %+v", missing)
	}
}

func TestValidateValuesUnknownFieldDeterministic(t *testing.T) {
	testlog.Start(t)
	s := retrySchema(t)
	for i := 0; i < 20; i++ {
		err := s.ValidateValues(Values{"addr": 1, "retries": 1, "zeta": 1, "alpha": 1})
		var unknown *UnknownFieldError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownFieldError, got %v", err)
		}
		if unknown.Field != "alpha" {
			t.Fatalf("expected first sorted unknown field, got %q", unknown.Field)
		}
	}
}

func TestValidateValuesMissingBeforeUnknown(t *testing.T) {
	testlog.Start(t)
	s := retrySchema(t)
	err := s.ValidateValues(Values{"addr": 1, "retry": 3})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestValidateValuesDoesNotMutate(t *testing.T) {
	testlog.Start(t)
	s := retrySchema(t)
	in := Values{"addr": 900, "retries": 3}
	_ = s.ValidateValues(in)
	if len(in) != 2 || in["addr"] != 900 || in["retries"] != 3 {
		t.Fatalf("values mutated: %v", in)
	}
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	testlog.Start(t)
	s := retrySchema(t)
	for _, data := range [][]byte{nil, {0x05}, {0x05, 0x03, 0x00}} {
		values, err := Decode(s, data)
		if !errors.Is(err, ErrTruncatedPacket) {
			t.Fatalf("data % x: expected ErrTruncatedPacket, got %v", data, err)
		}
		if values != nil {
			t.Fatalf("expected nil values on failure, got %v", values)
		}
		var te *TruncatedPacketError
		if !errors.As(err, &te) || te.Want != 2 || te.Got != len(data) {
			t.Fatalf("unexpected truncated error: %+v", te)
		}
	}
}

func TestDecodeRevalidatesBounds(t *testing.T) {
	testlog.Start(t)
	s := MustCommandSchema("test.bounded", Key{Peripheral: 0, Command: 4},
		U8("req_addr").Bounded(0, 239),
		I8("level").Bounded(-10, 10),
	)
	if _, err := Decode(s, []byte{0xEF, 0x0A}); err != nil {
		t.Fatalf("decode in-range: %v", err)
	}
	if _, err := Decode(s, []byte{0xF0, 0x00}); !errors.Is(err, ErrValueRange) {
		t.Fatalf("expected ErrValueRange for req_addr, got %v", err)
	}
	values, err := Decode(s, []byte{0x00, 0xF5}) // -11
	if !errors.Is(err, ErrValueRange) || values != nil {
		t.Fatalf("expected ErrValueRange for level, got %v %v", values, err)
	}
}

func TestDecodeUnsigned64Overflow(t *testing.T) {
	testlog.Start(t)
	s := MustCommandSchema("test.u64", Key{Peripheral: 2}, U64("counter"))
	_, err := Decode(s, []byte{0x80, 0, 0, 0, 0, 0, 0, 0})
	var re *ValueRangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected ValueRangeError, got %v", err)
	}
	if re.Raw != 1<<63 {
		t.Fatalf("unexpected raw value: %d", re.Raw)
	}
}

func TestReadWriteStream(t *testing.T) {
	testlog.Start(t)
	s := mixedSchema(t)
	in := Values{"flags": 1, "temperature": -300, "uptime": 12, "offset": -9, "counter": 44, "delta": 3}

	var buf bytes.Buffer
	if err := Write(&buf, s, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf.Write([]byte{0xAA})
	out, err := Read(&buf, s)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("stream mismatch: %v vs %v", in, out)
	}
	if buf.Len() != 1 {
		t.Fatalf("read consumed %d extra bytes", 1-buf.Len())
	}

	_, err = Read(bytes.NewReader([]byte{1, 2, 3}), s)
	var te *TruncatedPacketError
	if !errors.As(err, &te) || te.Got != 3 {
		t.Fatalf("expected truncated after 3 bytes, got %v", err)
	}
}

func TestWriteRejectsInvalidWithoutWriting(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := Write(&buf, retrySchema(t), Values{"addr": 1}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got % x", buf.Bytes())
	}
}
