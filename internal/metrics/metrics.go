// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Job is the Pushgateway job name used for runs.
const Job = "mutfreq"

// Metrics holds one run's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	SamplesAligned   prometheus.Counter
	SamplesSkipped   prometheus.Counter
	MutationEvents   prometheus.Counter
	AlignDuration    prometheus.Histogram
	FrequencyRecords prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		SamplesAligned: f.NewCounter(prometheus.CounterOpts{
			Name: "mutfreq_samples_aligned_total",
			Help: "Samples aligned against the reference",
		}),
		SamplesSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "mutfreq_samples_skipped_total",
			Help: "Samples skipped for exceeding their alignment budget",
		}),
		MutationEvents: f.NewCounter(prometheus.CounterOpts{
			Name: "mutfreq_mutation_events_total",
			Help: "Substitution events added to the long table",
		}),
		AlignDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mutfreq_alignment_duration_seconds",
			Help:    "Wall time of one sample alignment",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		FrequencyRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "mutfreq_frequency_records",
			Help: "Rows in the final frequency-by-day table",
		}),
	}
}

// Aligned and Skipped make Metrics a catalog observer.
func (m *Metrics) Aligned(_ string, events int, took time.Duration) {
	m.SamplesAligned.Inc()
	m.MutationEvents.Add(float64(events))
	m.AlignDuration.Observe(took.Seconds())
}

func (m *Metrics) Skipped(string, error) { m.SamplesSkipped.Inc() }

// Push sends the registry to a Prometheus Pushgateway, replacing the
// previous push for the same job and instance.
func (m *Metrics) Push(url, instance string) error {
	p := push.New(url, Job).Gatherer(m.Registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	return p.Push()
}
