package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure kinds counted by IncFailure
const (
	FailureInstance = "instance"
	FailureSolver   = "solver"
	FailureDecoding = "decoding"
)

// Recorder collects per-instance solve metrics.
type Recorder interface {
	ObserveSolve(status string, duration time.Duration)
	ObserveModel(binary, continuous, constraints int)
	IncFailure(kind string)
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) ObserveSolve(string, time.Duration) {}
func (NopRecorder) ObserveModel(int, int, int)         {}
func (NopRecorder) IncFailure(string)                  {}

// PromRecorder records solve metrics in Prometheus collectors.
type PromRecorder struct {
	solves    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	modelSize *prometheus.HistogramVec
	failures  *prometheus.CounterVec
}

// NewPromRecorder registers the collectors on reg. A nil registerer defaults to the global one and
// collectors already registered by a previous recorder are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fjsp_solves_total",
		Help: "Solved instances by termination status",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fjsp_solve_duration_seconds",
		Help:    "Wall-clock solver time per instance",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"status"})
	modelSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fjsp_model_size",
		Help:    "Number of variables and constraints of the generated models",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	}, []string{"kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fjsp_failures_total",
		Help: "Instances that produced no solution row by failure kind",
	}, []string{"kind"})

	var err error
	if solves, err = register(reg, solves); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if modelSize, err = register(reg, modelSize); err != nil {
		return nil, err
	}
	if failures, err = register(reg, failures); err != nil {
		return nil, err
	}
	return &PromRecorder{solves: solves, duration: duration, modelSize: modelSize, failures: failures}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func (r *PromRecorder) ObserveSolve(status string, duration time.Duration) {
	r.solves.WithLabelValues(status).Inc()
	r.duration.WithLabelValues(status).Observe(duration.Seconds())
}

func (r *PromRecorder) ObserveModel(binary, continuous, constraints int) {
	r.modelSize.WithLabelValues("binary").Observe(float64(binary))
	r.modelSize.WithLabelValues("continuous").Observe(float64(continuous))
	r.modelSize.WithLabelValues("constraints").Observe(float64(constraints))
}

func (r *PromRecorder) IncFailure(kind string) {
	r.failures.WithLabelValues(kind).Inc()
}

// WriteTextfile dumps every metric of gatherer in the text exposition format, ready for the node
// exporter textfile collector.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, gatherer)
}
