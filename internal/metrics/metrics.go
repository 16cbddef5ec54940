// Package metrics collects client-side counters for API calls and membership
// changes.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "findy"

// Metrics holds all Prometheus collectors for findy.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	ToggleOutcomes   *prometheus.CounterVec
	Members          *prometheus.GaugeVec
}

// New creates and registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "API requests by HTTP method and status code",
			},
			[]string{"method", "code"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RequestsInFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "api_requests_in_flight",
				Help:      "API requests currently waiting for a response",
			},
		),
		ToggleOutcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "membership_changes_total",
				Help:      "Saved/applied changes by how they settled",
			},
			[]string{"collection", "outcome"}, // outcome=confirmed/rolled_back/discarded
		),
		Members: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "membership_size",
				Help:      "Jobs currently in each collection",
			},
			[]string{"collection"},
		),
	}
}

// InstrumentTransport wraps next so every API call is counted and timed.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(m.RequestsInFlight,
		promhttp.InstrumentRoundTripperCounter(m.RequestsTotal,
			promhttp.InstrumentRoundTripperDuration(m.RequestDuration, next),
		),
	)
}

// ObserveToggle counts one settled membership change.
func (m *Metrics) ObserveToggle(collection, outcome string) {
	m.ToggleOutcomes.WithLabelValues(collection, outcome).Inc()
}

// SetMembers records the size of a collection.
func (m *Metrics) SetMembers(collection string, n int) {
	m.Members.WithLabelValues(collection).Set(float64(n))
}

// Dump writes every gathered sample as "name{labels} value", one per line,
// sorted by name. Histograms are reported as _count and _sum.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, sample(mf.GetName(), labels, m.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				lines = append(lines, sample(mf.GetName(), labels, m.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				lines = append(lines,
					sample(mf.GetName()+"_count", labels, float64(h.GetSampleCount())),
					sample(mf.GetName()+"_sum", labels, h.GetSampleSum()),
				)
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, lp := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func sample(name, labels string, v float64) string {
	return fmt.Sprintf("%s%s %g", name, labels, v)
}
