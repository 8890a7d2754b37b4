package dispatch

import (
	"errors"
	"fmt"

	"github.com/danmuck/pcodec/internal/observability"
	"github.com/danmuck/pcodec/internal/protocol"
	"github.com/danmuck/pcodec/internal/protocol/frame"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	OpEncodeRequest  = "encode_request"
	OpEncodeResponse = "encode_response"
	OpDecode         = "decode"
)

// ErrDeviceStatus reports a response whose RCODE is not a success code.
var ErrDeviceStatus = errors.New("dispatch: device returned error status")

// StatusError carries the decoded header of a failed response. PDATA is not
// decoded for these frames.
type StatusError struct {
	Message *Message
}

func (e *StatusError) Error() string {
	h := e.Message.Header
	return fmt.Sprintf("dispatch: pnum=0x%02X pcmd=0x%02X rcode=0x%02X (%s)", h.PNUM, h.CommandID(), h.Rcode, frame.RcodeName(h.Rcode))
}

func (e *StatusError) Unwrap() error { return ErrDeviceStatus }

// Message is one decoded DPA frame. Confirmation frames carry the header
// and raw PDATA only; Values stays nil.
type Message struct {
	Header frame.Header
	Schema *protocol.CommandSchema
	Values protocol.Values
	PDATA  []byte
}

// Confirmation reports whether the frame is a DPA confirmation rather than
// the command's response.
func (m *Message) Confirmation() bool {
	return m.Header.Direction() == protocol.Response && m.Header.Rcode == frame.RcodeConfirmation
}

// Dispatcher couples the command registry with the DPA envelope.
type Dispatcher struct {
	registry *protocol.Registry
	limits   frame.Limits
	logger   zerolog.Logger
}

type Option func(*Dispatcher)

// WithLimits overrides frame.DefaultLimits.
func WithLimits(limits frame.Limits) Option {
	return func(d *Dispatcher) { d.limits = limits }
}

// WithLogger replaces the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// New creates a Dispatcher over reg. Metrics are registered with the default
// prometheus registry on first use.
func New(reg *protocol.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		limits:   frame.DefaultLimits(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With().Str("component", "dispatch").Logger()
	observability.RegisterMetrics()
	return d
}

func (d *Dispatcher) Registry() *protocol.Registry { return d.registry }

// EncodeRequest encodes values with the request schema for (peripheral,
// command) and wraps them in a request frame.
func (d *Dispatcher) EncodeRequest(nadr, hwpid uint16, peripheral, command uint8, values protocol.Values) ([]byte, error) {
	key := protocol.Key{Peripheral: peripheral, Command: command, Direction: protocol.Request}
	out, err := d.encode(key, values, func(pdata []byte) (frame.Frame, error) {
		return frame.NewRequest(nadr, peripheral, command, hwpid, pdata)
	})
	d.record(OpEncodeRequest, key, len(out), err)
	return out, err
}

// EncodeResponse encodes values with the response schema and wraps them in a
// response frame carrying rcode and dpaValue.
func (d *Dispatcher) EncodeResponse(nadr, hwpid uint16, peripheral, command, rcode, dpaValue uint8, values protocol.Values) ([]byte, error) {
	key := protocol.Key{Peripheral: peripheral, Command: command, Direction: protocol.Response}
	out, err := d.encode(key, values, func(pdata []byte) (frame.Frame, error) {
		return frame.NewResponse(nadr, peripheral, command, hwpid, rcode, dpaValue, pdata)
	})
	d.record(OpEncodeResponse, key, len(out), err)
	return out, err
}

func (d *Dispatcher) encode(key protocol.Key, values protocol.Values, build func([]byte) (frame.Frame, error)) ([]byte, error) {
	schema, err := d.registry.LookupKey(key)
	if err != nil {
		return nil, err
	}
	pdata, err := protocol.Encode(schema, values)
	if err != nil {
		return nil, err
	}
	f, err := build(pdata)
	if err != nil {
		return nil, err
	}
	return frame.Encode(f, d.limits)
}

// DecodeFrame parses the envelope, resolves the schema from PNUM, PCMD and the
// response flag, then decodes PDATA. A confirmation frame is returned with
// its raw PDATA and no Values. Any other response with a failing RCODE
// returns a *StatusError and is not decoded further.
func (d *Dispatcher) DecodeFrame(data []byte) (*Message, error) {
	f, err := frame.Decode(data, d.limits)
	if err != nil {
		result := Classify(err)
		observability.RecordUnkeyed(OpDecode, result)
		d.logFailure(OpDecode, observability.LabelNone, result, err)
		return nil, err
	}
	msg, err := d.decode(f)
	result := Classify(err)
	if err == nil && msg.Confirmation() {
		result = observability.ResultConfirmation
	}
	d.recordResult(OpDecode, f.Header.Key(), result, len(data), err)
	return msg, err
}

func (d *Dispatcher) decode(f frame.Frame) (*Message, error) {
	msg := &Message{Header: f.Header, PDATA: f.PDATA}
	if msg.Confirmation() {
		if schema, err := d.registry.LookupKey(f.Header.Key()); err == nil {
			msg.Schema = schema
		}
		return msg, nil
	}
	if f.Header.Direction() == protocol.Response && !frame.RcodeSuccess(f.Header.Rcode) {
		if schema, err := d.registry.LookupKey(f.Header.Key()); err == nil {
			msg.Schema = schema
		}
		return nil, &StatusError{Message: msg}
	}
	schema, err := d.registry.LookupKey(f.Header.Key())
	if err != nil {
		return nil, err
	}
	values, err := protocol.Decode(schema, f.PDATA)
	if err != nil {
		return nil, err
	}
	msg.Schema = schema
	msg.Values = values
	return msg, nil
}

func (d *Dispatcher) record(op string, key protocol.Key, size int, err error) {
	d.recordResult(op, key, Classify(err), size, err)
}

func (d *Dispatcher) recordResult(op string, key protocol.Key, result string, size int, err error) {
	observability.RecordDispatch(op, key.Peripheral, key.Command, result, size)
	if err != nil {
		d.logFailure(op, key.String(), result, err)
		return
	}
	d.logger.Debug().
		Str("op", op).
		Stringer("key", key).
		Str("result", result).
		Int("bytes", size).
		Msg("dispatch ok")
}

func (d *Dispatcher) logFailure(op, key, result string, err error) {
	d.logger.Warn().
		Str("op", op).
		Str("key", key).
		Str("result", result).
		Err(err).
		Msg("dispatch failed")
}

// Classify maps an error to its metrics result label.
func Classify(err error) string {
	switch {
	case err == nil:
		return observability.ResultOK
	case errors.Is(err, protocol.ErrMissingField):
		return "missing_field"
	case errors.Is(err, protocol.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, protocol.ErrValueRange):
		return "value_range"
	case errors.Is(err, protocol.ErrTruncatedPacket):
		return "truncated"
	case errors.Is(err, protocol.ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, ErrDeviceStatus):
		return "device_status"
	case errors.Is(err, frame.ErrShortHeader),
		errors.Is(err, frame.ErrPayloadTooLarge),
		errors.Is(err, frame.ErrInvalidCommand):
		return "envelope"
	default:
		return "error"
	}
}
