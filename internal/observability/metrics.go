package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gravityputt",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gravityputt",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gravityputt",
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently ticking.",
		},
	)
	sessionsHalted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gravityputt",
			Subsystem: "session",
			Name:      "halted_total",
			Help:      "Sessions stopped by a fatal error.",
		},
		[]string{"reason"},
	)
	strokes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gravityputt",
			Subsystem: "game",
			Name:      "strokes_total",
			Help:      "Accepted strokes.",
		},
	)
	holes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gravityputt",
			Subsystem: "game",
			Name:      "holes_completed_total",
			Help:      "Completed holes.",
		},
	)
	holeStrokes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gravityputt",
			Subsystem: "game",
			Name:      "hole_strokes",
			Help:      "Strokes taken per completed hole.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10, 15},
		},
	)
	recoveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gravityputt",
			Subsystem: "game",
			Name:      "recoveries_total",
			Help:      "Off-screen ball recoveries.",
		},
	)
	levelGeneration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gravityputt",
			Subsystem: "level",
			Name:      "generation_seconds",
			Help:      "Level generation latency in seconds.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
	snapshotSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gravityputt",
			Subsystem: "store",
			Name:      "snapshot_saves_total",
			Help:      "Snapshot save attempts.",
		},
		[]string{"result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			activeSessions, sessionsHalted,
			strokes, holes, holeStrokes, recoveries,
			levelGeneration, snapshotSaves,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func SessionStarted() {
	RegisterMetrics()
	activeSessions.Inc()
}

func SessionEnded() {
	RegisterMetrics()
	activeSessions.Dec()
}

func RecordHalt(reason string) {
	RegisterMetrics()
	sessionsHalted.WithLabelValues(reason).Inc()
}

func RecordStroke() {
	RegisterMetrics()
	strokes.Inc()
}

func RecordHole(strokeCount int) {
	RegisterMetrics()
	holes.Inc()
	holeStrokes.Observe(float64(strokeCount))
}

func RecordRecovery() {
	RegisterMetrics()
	recoveries.Inc()
}

func RecordLevelGeneration(d time.Duration) {
	RegisterMetrics()
	levelGeneration.Observe(d.Seconds())
}

func RecordSnapshotSave(err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	snapshotSaves.WithLabelValues(result).Inc()
}
