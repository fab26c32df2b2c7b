package capture

import "github.com/prometheus/client_golang/prometheus"

const (
	serviceName      = "fluere"
	captureSubsystem = "capture"
)

var packetsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: serviceName,
	Subsystem: captureSubsystem,
	Name:      "packets_processed_total",
	Help:      "Number of packets processed by the capture pipeline",
})
var packetsRejected = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: serviceName,
	Subsystem: captureSubsystem,
	Name:      "packets_rejected_total",
	Help:      "Number of packets rejected by the flow establishment rules",
})
var parseErrors = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: serviceName,
	Subsystem: captureSubsystem,
	Name:      "parse_errors_total",
	Help:      "Number of frames discarded due to decoding errors",
})
var flowsExported = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: serviceName,
	Subsystem: captureSubsystem,
	Name:      "flows_exported_total",
	Help:      "Number of completed flow records handed to the exporter",
})

var rotationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: serviceName,
	Subsystem: captureSubsystem,
	Name:      "rotation_duration_seconds",
	Help:      "Time spent harvesting expired flows and queueing the writeout",
	// rotation is significantly faster than the writeout, hence the
	// small buckets
	Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

func init() {
	prometheus.MustRegister(
		packetsProcessed,
		packetsRejected,
		parseErrors,
		flowsExported,
		rotationDuration,
	)
}
