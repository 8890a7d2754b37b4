package observability

import (
	"testing"

	"github.com/danmuck/pcodec/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(DispatchCount("encode", 0x00, 0x04, ResultOK))
	RecordDispatch("encode", 0x00, 0x04, ResultOK, 8)
	RecordDispatch("encode", 0x00, 0x04, "value_range", 0)
	after := testutil.ToFloat64(DispatchCount("encode", 0x00, 0x04, ResultOK))
	if after-before != 1 {
		t.Fatalf("expected ok counter to advance by 1, got %v", after-before)
	}
	if got := testutil.ToFloat64(DispatchCount("encode", 0x00, 0x04, "value_range")); got < 1 {
		t.Fatalf("expected value_range counter recorded, got %v", got)
	}
}

func TestHexLabel(t *testing.T) {
	testlog.Start(t)
	if got := hexLabel(0x8A); got != "0x8A" {
		t.Fatalf("unexpected label: %q", got)
	}
}

func TestRecordUnkeyedUsesNoneLabels(t *testing.T) {
	testlog.Start(t)
	before := testutil.ToFloat64(UnkeyedCount("decode", "envelope"))
	keyed := testutil.ToFloat64(DispatchCount("decode", 0x00, 0x00, "envelope"))
	RecordUnkeyed("decode", "envelope")
	if got := testutil.ToFloat64(UnkeyedCount("decode", "envelope")) - before; got != 1 {
		t.Fatalf("expected unkeyed counter to advance by 1, got %v", got)
	}
	if got := testutil.ToFloat64(DispatchCount("decode", 0x00, 0x00, "envelope")); got != keyed {
		t.Fatalf("unkeyed record leaked into pnum=0x00 pcmd=0x00 labels")
	}
}
