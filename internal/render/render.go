package render

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/pcodec/internal/dispatch"
	"github.com/danmuck/pcodec/internal/protocol"
	"github.com/danmuck/pcodec/internal/protocol/frame"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

var ErrUnknownFormat = errors.New("render: unknown format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCBOR:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FieldValue is one decoded field in wire order.
type FieldValue struct {
	Name  string `json:"name" cbor:"name"`
	Value int64  `json:"value" cbor:"value"`
}

// MessageView is the serializable form of a decoded frame. Rcode and
// DPAValue are only set for responses.
type MessageView struct {
	Name       string       `json:"name" cbor:"name"`
	Peripheral uint8        `json:"peripheral" cbor:"peripheral"`
	Command    uint8        `json:"command" cbor:"command"`
	Direction  string       `json:"direction" cbor:"direction"`
	NADR       uint16       `json:"nadr" cbor:"nadr"`
	HWPID      uint16       `json:"hwpid" cbor:"hwpid"`
	Rcode      *uint8       `json:"rcode,omitempty" cbor:"rcode,omitempty"`
	DPAValue   *uint8       `json:"dpa_value,omitempty" cbor:"dpa_value,omitempty"`
	Fields     []FieldValue `json:"fields" cbor:"fields"`
}

// NewMessageView flattens msg. Fields follow the schema's wire order.
func NewMessageView(msg *dispatch.Message) MessageView {
	h := msg.Header
	v := MessageView{
		Peripheral: h.PNUM,
		Command:    h.CommandID(),
		Direction:  h.Direction().String(),
		NADR:       h.NADR,
		HWPID:      h.HWPID,
		Fields:     []FieldValue{},
	}
	if h.Direction() == protocol.Response {
		rcode, dpa := h.Rcode, h.DPAValue
		v.Rcode = &rcode
		v.DPAValue = &dpa
	}
	if msg.Schema == nil {
		return v
	}
	v.Name = msg.Schema.Name()
	for _, f := range msg.Schema.Fields() {
		if val, ok := msg.Values[f.Name()]; ok {
			v.Fields = append(v.Fields, FieldValue{Name: f.Name(), Value: val})
		}
	}
	return v
}

// Message writes msg in format. CBOR output is hex encoded on one line.
func Message(w io.Writer, msg *dispatch.Message, format Format) error {
	v := NewMessageView(msg)
	switch format {
	case FormatText:
		return writeMessageText(w, v)
	case FormatJSON:
		return writeJSON(w, v)
	case FormatCBOR:
		return writeCBOR(w, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeMessageText(w io.Writer, v MessageView) error {
	var b strings.Builder
	name := v.Name
	if name == "" {
		name = "<unregistered>"
	}
	fmt.Fprintf(&b, "%s %s\n", name, v.Direction)
	fmt.Fprintf(&b, "  nadr=0x%04X pnum=0x%02X pcmd=0x%02X hwpid=0x%04X\n", v.NADR, v.Peripheral, v.Command, v.HWPID)
	if v.Rcode != nil {
		fmt.Fprintf(&b, "  rcode=0x%02X (%s) dpa_value=0x%02X\n", *v.Rcode, frame.RcodeName(*v.Rcode), *v.DPAValue)
	}
	width := 0
	for _, f := range v.Fields {
		width = max(width, len(f.Name))
	}
	for _, f := range v.Fields {
		fmt.Fprintf(&b, "  %-*s %d\n", width, f.Name, f.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCBOR(w io.Writer, v any) error {
	data, err := MarshalCBOR(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hex.EncodeToString(data))
	return err
}
