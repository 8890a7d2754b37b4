package observability

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	dispatchOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pcodec",
			Subsystem: "dispatch",
			Name:      "operations_total",
			Help:      "Encode and decode operations by command and result.",
		},
		[]string{"op", "peripheral", "command", "result"},
	)
	dispatchPayloadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pcodec",
			Subsystem: "dispatch",
			Name:      "payload_bytes",
			Help:      "Size of successfully handled frames in bytes.",
			Buckets:   prometheus.LinearBuckets(0, 8, 9),
		},
		[]string{"op"},
	)
)

// RegisterMetrics registers collectors with the default registry once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(dispatchOperations, dispatchPayloadBytes)
	})
}

// RecordDispatch counts one dispatch operation. size is observed only for
// successful operations.
func RecordDispatch(op string, peripheral, command uint8, result string, size int) {
	RegisterMetrics()
	dispatchOperations.WithLabelValues(op, hexLabel(peripheral), hexLabel(command), result).Inc()
	if result == ResultOK {
		dispatchPayloadBytes.WithLabelValues(op).Observe(float64(size))
	}
}

// RecordUnkeyed counts an operation that failed before a header could be
// parsed. Peripheral and command are labelled LabelNone.
func RecordUnkeyed(op, result string) {
	RegisterMetrics()
	dispatchOperations.WithLabelValues(op, LabelNone, LabelNone, result).Inc()
}

// DispatchCount returns the current counter value for the label set.
func DispatchCount(op string, peripheral, command uint8, result string) prometheus.Counter {
	return dispatchOperations.WithLabelValues(op, hexLabel(peripheral), hexLabel(command), result)
}

// UnkeyedCount is DispatchCount for operations recorded by RecordUnkeyed.
func UnkeyedCount(op, result string) prometheus.Counter {
	return dispatchOperations.WithLabelValues(op, LabelNone, LabelNone, result)
}

const (
	ResultOK           = "ok"
	ResultConfirmation = "confirmation"
	LabelNone          = "none"
)

func hexLabel(v uint8) string {
	return fmt.Sprintf("0x%02X", v)
}
