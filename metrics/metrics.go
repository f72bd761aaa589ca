// Package metrics records content build metrics.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for IncBuildOutcome.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Recorder receives build observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string)
	SetLoaded(collection string, n int)
	IncLoadErrors(kind string, n int)
}

// Noop discards every observation.
type Noop struct{}

func (Noop) ObserveBuildDuration(time.Duration) {}
func (Noop) IncBuildOutcome(string)             {}
func (Noop) SetLoaded(string, int)              {}
func (Noop) IncLoadErrors(string, int)          {}

// Prometheus implements Recorder with Prometheus collectors.
type Prometheus struct {
	reg           *prom.Registry
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	loaded        *prom.GaugeVec
	loadErrors    *prom.CounterVec
}

// NewPrometheus registers the pubsite collectors on reg, or on a fresh
// registry when reg is nil.
func NewPrometheus(reg *prom.Registry) *Prometheus {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	p := &Prometheus{
		reg: reg,
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pubsite",
			Name:      "build_duration_seconds",
			Help:      "Duration of content load and index rebuilds",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pubsite",
			Name:      "build_outcomes_total",
			Help:      "Builds by outcome",
		}, []string{"outcome"}),
		loaded: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "pubsite",
			Name:      "content_entries",
			Help:      "Entries in the last good build by collection",
		}, []string{"collection"}),
		loadErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pubsite",
			Name:      "load_errors_total",
			Help:      "Content load errors by kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(p.buildDuration, p.buildOutcome, p.loaded, p.loadErrors)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *Prometheus) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *Prometheus) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) SetLoaded(collection string, n int) {
	p.loaded.WithLabelValues(collection).Set(float64(n))
}

func (p *Prometheus) IncLoadErrors(kind string, n int) {
	p.loadErrors.WithLabelValues(kind).Add(float64(n))
}
