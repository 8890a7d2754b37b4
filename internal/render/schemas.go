package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/pcodec/internal/protocol"
)

type FieldView struct {
	Name   string `json:"name" cbor:"name"`
	Width  int    `json:"width" cbor:"width"`
	Signed bool   `json:"signed" cbor:"signed"`
	Min    int64  `json:"min" cbor:"min"`
	Max    int64  `json:"max" cbor:"max"`
}

type SchemaView struct {
	Name       string      `json:"name" cbor:"name"`
	Peripheral uint8       `json:"peripheral" cbor:"peripheral"`
	Command    uint8       `json:"command" cbor:"command"`
	Direction  string      `json:"direction" cbor:"direction"`
	Width      int         `json:"width" cbor:"width"`
	Fields     []FieldView `json:"fields" cbor:"fields"`
}

func NewSchemaView(s *protocol.CommandSchema) SchemaView {
	v := SchemaView{
		Name:       s.Name(),
		Peripheral: s.Peripheral(),
		Command:    s.Command(),
		Direction:  s.Direction().String(),
		Width:      s.TotalWidth(),
		Fields:     []FieldView{},
	}
	for _, f := range s.Fields() {
		v.Fields = append(v.Fields, FieldView{
			Name:   f.Name(),
			Width:  f.Width(),
			Signed: f.Signed(),
			Min:    f.Min(),
			Max:    f.Max(),
		})
	}
	return v
}

// Schemas writes one entry per schema in the given order.
func Schemas(w io.Writer, schemas []*protocol.CommandSchema, format Format) error {
	views := make([]SchemaView, 0, len(schemas))
	for _, s := range schemas {
		views = append(views, NewSchemaView(s))
	}
	switch format {
	case FormatText:
		return writeSchemasText(w, views)
	case FormatJSON:
		return writeJSON(w, views)
	case FormatCBOR:
		return writeCBOR(w, views)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeSchemasText(w io.Writer, views []SchemaView) error {
	var b strings.Builder
	for _, v := range views {
		fields := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			fields = append(fields, fieldText(f))
		}
		fmt.Fprintf(&b, "0x%02X 0x%02X %-8s %2dB %s", v.Peripheral, v.Command, v.Direction, v.Width, v.Name)
		if len(fields) > 0 {
			fmt.Fprintf(&b, " %s", strings.Join(fields, " "))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func fieldText(f FieldView) string {
	kind := "u"
	if f.Signed {
		kind = "i"
	}
	return fmt.Sprintf("%s:%s%d[%d..%d]", f.Name, kind, 8*f.Width, f.Min, f.Max)
}
