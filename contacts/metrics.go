package contacts

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics holds the fetch counters of one Backend.
type Metrics struct {
	set *metrics.Set

	fetches       *metrics.Counter
	fetchErrors   *metrics.Counter
	records       *metrics.Counter
	fetchDuration *metrics.Histogram
	skips         map[SkipReason]*metrics.Counter
}

// NewMetrics registers a fresh metrics set.
func NewMetrics() *Metrics {
	set := metrics.NewSet()
	m := &Metrics{
		set:           set,
		fetches:       set.NewCounter("contacts_fetch_total"),
		fetchErrors:   set.NewCounter("contacts_fetch_errors_total"),
		records:       set.NewCounter("contacts_records_total"),
		fetchDuration: set.NewHistogram("contacts_fetch_duration_seconds"),
		skips:         map[SkipReason]*metrics.Counter{},
	}
	for _, reason := range []SkipReason{SkipParse, SkipVersion, SkipName, SkipField} {
		m.skips[reason] = set.NewCounter(`contacts_records_skipped_total{reason="` + string(reason) + `"}`)
	}
	return m
}

func (m *Metrics) skipped(reason SkipReason) *metrics.Counter {
	if c, ok := m.skips[reason]; ok {
		return c
	}
	return m.skips[SkipParse]
}

// Fetches returns the number of fetch attempts.
func (m *Metrics) Fetches() uint64 { return m.fetches.Get() }

// FetchErrors returns the number of fetches that ended in an error.
func (m *Metrics) FetchErrors() uint64 { return m.fetchErrors.Get() }

// Records returns the number of raw records received.
func (m *Metrics) Records() uint64 { return m.records.Get() }

// Skipped returns the number of records dropped for reason.
func (m *Metrics) Skipped(reason SkipReason) uint64 { return m.skipped(reason).Get() }

// WritePrometheus writes the set in Prometheus text format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
