package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session Metrics
var (
	// SessionsActive tracks the number of mounted timer screens
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "timer_sessions_active",
			Help: "Number of mounted timer sessions",
		},
	)

	// SessionsUnmountedTotal tracks unmounts by reason (client, idle, shutdown)
	SessionsUnmountedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timer_sessions_unmounted_total",
			Help: "Total unmounted timer sessions by reason",
		},
		[]string{"reason"},
	)

	// EngineEventsTotal tracks engine transitions by kind
	EngineEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timer_engine_events_total",
			Help: "Total countdown engine events by kind",
		},
		[]string{"kind"},
	)

	// ActionsTotal tracks user input by action and result
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timer_actions_total",
			Help: "Total user actions by action and status",
		},
		[]string{"action", "status"},
	)
)

// Frame Metrics
var (
	// FramesPublishedTotal tracks frames delivered to subscribers
	FramesPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timer_frames_published_total",
			Help: "Total frames delivered to render subscribers",
		},
	)

	// FramesDroppedTotal tracks frames skipped because a subscriber was slow
	FramesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timer_frames_dropped_total",
			Help: "Total frames dropped for slow render subscribers",
		},
	)

	// SubscribersActive tracks open render streams (SSE and WebSocket)
	SubscribersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "timer_subscribers_active",
			Help: "Open render streams by transport",
		},
		[]string{"transport"},
	)
)

// History Metrics
var (
	// HistoryWritesTotal tracks run history writes by status
	HistoryWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timer_history_writes_total",
			Help: "Total run history writes by status",
		},
		[]string{"status"},
	)
)
