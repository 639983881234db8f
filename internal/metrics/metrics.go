// Package metrics records operational metrics for csvselect runs behind a
// small, backend-agnostic interface.
//
// A global backend defaults to a no-op, so instrumentation is always safe to
// call. Concrete systems live in subpackages (prompush, datadog) and are
// installed with SetBackend by the command.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StageTotal    = "csvselect_stage_total"
	StageDuration = "csvselect_stage_duration_seconds"
	RowsTotal     = "csvselect_rows_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
// It is meant to be called once from main before any run starts.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage counts one execution of a pipeline stage and its latency,
// labelled with success or failure.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows adds delta rows of the given kind ("read", "written").
func RecordRows(job, kind string, delta int) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
