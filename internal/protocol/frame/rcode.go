package frame

import "fmt"

// Response codes carried in the RCODE byte.
const (
	RcodeOK            uint8 = 0x00
	RcodeErrorFail     uint8 = 0x01
	RcodeErrorPCMD     uint8 = 0x02
	RcodeErrorPNUM     uint8 = 0x03
	RcodeErrorAddr     uint8 = 0x04
	RcodeErrorDataLen  uint8 = 0x05
	RcodeErrorData     uint8 = 0x06
	RcodeErrorHWPID    uint8 = 0x07
	RcodeErrorNADR     uint8 = 0x08
	RcodeErrorUserFrom uint8 = 0x20
	RcodeErrorUserTo   uint8 = 0x3F
	RcodeAsyncFlag     uint8 = 0x80
	RcodeConfirmation  uint8 = 0xFF
)

// RcodeName returns a human-readable name for code. The async flag is
// ignored except for the confirmation code.
func RcodeName(code uint8) string {
	if code == RcodeConfirmation {
		return "confirmation"
	}
	base := code &^ RcodeAsyncFlag
	switch {
	case base == RcodeOK:
		return "ok"
	case base == RcodeErrorFail:
		return "general failure"
	case base == RcodeErrorPCMD:
		return "invalid pcmd"
	case base == RcodeErrorPNUM:
		return "invalid pnum"
	case base == RcodeErrorAddr:
		return "invalid address"
	case base == RcodeErrorDataLen:
		return "invalid data length"
	case base == RcodeErrorData:
		return "invalid data"
	case base == RcodeErrorHWPID:
		return "invalid hwpid"
	case base == RcodeErrorNADR:
		return "invalid nadr"
	case base >= RcodeErrorUserFrom && base <= RcodeErrorUserTo:
		return fmt.Sprintf("user error 0x%02X", base)
	default:
		return fmt.Sprintf("unknown rcode 0x%02X", code)
	}
}

// RcodeSuccess reports whether code means the command ran.
func RcodeSuccess(code uint8) bool {
	return code&^RcodeAsyncFlag == RcodeOK
}
