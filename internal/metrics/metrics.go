// Package metrics exports switch coordinator counters to prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llehouerou/tilawa/internal/playback"
)

const namespace = "tilawa"

// Recorder implements playback.Recorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	switchesRequested prometheus.Counter
	switchesCompleted *prometheus.CounterVec
	switchesStale     prometheus.Counter
	switchesFailed    *prometheus.CounterVec
	loadRetries       *prometheus.CounterVec
	redirects         prometheus.Counter
	preloads          prometheus.Counter
}

// New creates a recorder and registers its collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		switchesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "switches_requested_total",
			Help:      "Verse switches requested by the user or by auto-advance",
		}),
		switchesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "switches_completed_total",
			Help:      "Verse switches that reached the ready state",
		}, []string{"preloaded"}),
		switchesStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "switches_stale_total",
			Help:      "Switch attempts discarded because a newer request replaced them",
		}),
		switchesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "switches_failed_total",
			Help:      "Verse switches that ended in an error",
		}, []string{"reason"}),
		loadRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_retries_total",
			Help:      "Load retries by attempt number",
		}, []string{"attempt"}),
		redirects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_redirects_total",
			Help:      "Forward moves refused by the access gate",
		}),
		preloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preloads_started_total",
			Help:      "Next-verse preloads started",
		}),
	}

	r.registry.MustRegister(
		r.switchesRequested,
		r.switchesCompleted,
		r.switchesStale,
		r.switchesFailed,
		r.loadRetries,
		r.redirects,
		r.preloads,
	)
	return r
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) SwitchRequested() { r.switchesRequested.Inc() }

func (r *Recorder) SwitchCompleted(preloaded bool) {
	r.switchesCompleted.WithLabelValues(strconv.FormatBool(preloaded)).Inc()
}

func (r *Recorder) SwitchStale() { r.switchesStale.Inc() }

func (r *Recorder) SwitchFailed(reason string) { r.switchesFailed.WithLabelValues(reason).Inc() }

func (r *Recorder) LoadRetry(attempt int) {
	r.loadRetries.WithLabelValues(strconv.Itoa(attempt)).Inc()
}

func (r *Recorder) Redirect() { r.redirects.Inc() }

func (r *Recorder) Preload() { r.preloads.Inc() }

var _ playback.Recorder = (*Recorder)(nil)
