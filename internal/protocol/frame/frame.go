package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/pcodec/internal/protocol"
)

// Header sizes. NADR and HWPID are little-endian on the DPA wire; PDATA is
// whatever the payload codec produced.
const (
	RequestHeaderLen  = 6
	ResponseHeaderLen = 8
	ResponseFlag      = 0x80
)

// Well-known node addresses and HWPID.
const (
	AddrCoordinator uint16 = 0x00
	AddrLocal       uint16 = 0xFC
	AddrBroadcast   uint16 = 0xFF
	HWPIDAny        uint16 = 0xFFFF
)

var (
	ErrShortHeader     = errors.New("frame: short header")
	ErrPayloadTooLarge = errors.New("frame: pdata too large")
	ErrInvalidCommand  = errors.New("frame: pcmd outside request range")
)

// Header is the DPA packet header. Rcode and DPAValue are only present on
// responses.
type Header struct {
	NADR     uint16
	PNUM     uint8
	PCMD     uint8
	HWPID    uint16
	Rcode    uint8
	DPAValue uint8
}

// Direction derives request/response from bit 7 of PCMD.
func (h Header) Direction() protocol.Direction {
	if h.PCMD&ResponseFlag != 0 {
		return protocol.Response
	}
	return protocol.Request
}

// CommandID is PCMD without the response flag.
func (h Header) CommandID() uint8 {
	return h.PCMD &^ ResponseFlag
}

// Key is the registry key for the payload carried under this header.
func (h Header) Key() protocol.Key {
	return protocol.Key{Peripheral: h.PNUM, Command: h.CommandID(), Direction: h.Direction()}
}

// Len is the encoded header length.
func (h Header) Len() int {
	if h.Direction() == protocol.Response {
		return ResponseHeaderLen
	}
	return RequestHeaderLen
}

// Frame is one complete DPA packet.
type Frame struct {
	Header Header
	PDATA  []byte
}

// Limits constrains PDATA size.
type Limits struct {
	MaxPDATA int
}

func DefaultLimits() Limits {
	return Limits{MaxPDATA: 56}
}

// NewRequest builds a request frame. cmd must be below 0x80.
func NewRequest(nadr uint16, pnum, cmd uint8, hwpid uint16, pdata []byte) (Frame, error) {
	if cmd&ResponseFlag != 0 {
		return Frame{}, fmt.Errorf("%w: 0x%02X", ErrInvalidCommand, cmd)
	}
	return Frame{
		Header: Header{NADR: nadr, PNUM: pnum, PCMD: cmd, HWPID: hwpid},
		PDATA:  pdata,
	}, nil
}

// NewResponse builds a response frame for request command cmd; the response
// flag is set on PCMD.
func NewResponse(nadr uint16, pnum, cmd uint8, hwpid uint16, rcode, dpaValue uint8, pdata []byte) (Frame, error) {
	if cmd&ResponseFlag != 0 {
		return Frame{}, fmt.Errorf("%w: 0x%02X", ErrInvalidCommand, cmd)
	}
	return Frame{
		Header: Header{NADR: nadr, PNUM: pnum, PCMD: cmd | ResponseFlag, HWPID: hwpid, Rcode: rcode, DPAValue: dpaValue},
		PDATA:  pdata,
	}, nil
}

// Encode serializes f.
func Encode(f Frame, limits Limits) ([]byte, error) {
	if len(f.PDATA) > limits.MaxPDATA {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(f.PDATA), limits.MaxPDATA)
	}
	h := f.Header
	buf := make([]byte, h.Len(), h.Len()+len(f.PDATA))
	binary.LittleEndian.PutUint16(buf[0:2], h.NADR)
	buf[2] = h.PNUM
	buf[3] = h.PCMD
	binary.LittleEndian.PutUint16(buf[4:6], h.HWPID)
	if h.Direction() == protocol.Response {
		buf[6] = h.Rcode
		buf[7] = h.DPAValue
	}
	return append(buf, f.PDATA...), nil
}

// Decode parses one packet. The returned PDATA does not alias b.
func Decode(b []byte, limits Limits) (Frame, error) {
	if len(b) < RequestHeaderLen {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(b))
	}
	h := Header{
		NADR:  binary.LittleEndian.Uint16(b[0:2]),
		PNUM:  b[2],
		PCMD:  b[3],
		HWPID: binary.LittleEndian.Uint16(b[4:6]),
	}
	if h.Direction() == protocol.Response {
		if len(b) < ResponseHeaderLen {
			return Frame{}, fmt.Errorf("%w: %d bytes for response", ErrShortHeader, len(b))
		}
		h.Rcode = b[6]
		h.DPAValue = b[7]
	}
	rest := b[h.Len():]
	if len(rest) > limits.MaxPDATA {
		return Frame{}, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(rest), limits.MaxPDATA)
	}
	pdata := make([]byte, len(rest))
	copy(pdata, rest)
	return Frame{Header: h, PDATA: pdata}, nil
}

// ReadFrame reads one packet from r, which must yield exactly one packet
// before EOF (a datagram, a serial transaction buffer, a byte slice).
func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	max := int64(ResponseHeaderLen + limits.MaxPDATA + 1)
	b, err := io.ReadAll(io.LimitReader(r, max))
	if err != nil {
		return Frame{}, err
	}
	return Decode(b, limits)
}

// WriteFrame encodes f and writes it with a single Write call.
func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	b, err := Encode(f, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// HWPIDFromBytes joins HWPID high and low bytes.
func HWPIDFromBytes(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
