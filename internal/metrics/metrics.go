// Package metrics exposes prometheus collectors for proposal activity.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "solar_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	renderTotal    *prometheus.CounterVec
	renderLatency  *prometheus.HistogramVec
	renderCacheHit *prometheus.CounterVec
	proposalsTotal *prometheus.CounterVec
	loginTotal     *prometheus.CounterVec
	emailTotal     *prometheus.CounterVec
)

// Init registers the collectors with reg, the default registerer when nil.
// Only the first call has an effect.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		renderTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "proposal_render_total",
				Help: "Total proposal PDF renders by result",
			},
			[]string{"result", "variant"},
		)
		renderLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "proposal_render_duration_seconds",
				Help:    "Proposal PDF render duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		renderCacheHit = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "proposal_render_cache_total",
				Help: "Render cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		proposalsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "proposals_total",
				Help: "Proposal lifecycle operations",
			},
			[]string{"operation"},
		)
		loginTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		)
		emailTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "proposal_emails_total",
				Help: "Proposal emails by result",
			},
			[]string{"result"},
		)

		reg.MustRegister(renderTotal, renderLatency, renderCacheHit, proposalsTotal, loginTotal, emailTotal)
	})
}

// ObserveRender records one render and its duration.
func ObserveRender(result, variant string, duration time.Duration) {
	if renderTotal == nil {
		return
	}
	renderTotal.WithLabelValues(result, variant).Inc()
	renderLatency.WithLabelValues(result).Observe(duration.Seconds())
}

func IncRenderCache(hit bool) {
	if renderCacheHit == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	renderCacheHit.WithLabelValues(outcome).Inc()
}

func IncProposal(operation string) {
	if proposalsTotal == nil {
		return
	}
	proposalsTotal.WithLabelValues(operation).Inc()
}

func IncLogin(result string) {
	if loginTotal == nil {
		return
	}
	loginTotal.WithLabelValues(result).Inc()
}

func IncEmail(result string) {
	if emailTotal == nil {
		return
	}
	emailTotal.WithLabelValues(result).Inc()
}
