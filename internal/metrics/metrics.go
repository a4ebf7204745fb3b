package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Notification Metrics
var (
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameNotificationsPublished,
			Help: HelpTextNotificationsPublished,
		},
		[]string{LabelType},
	)
)

// Lifecycle Metrics
var (
	EventsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsCreated,
			Help: HelpTextEventsCreated,
		},
		[]string{LabelEventType},
	)

	EventsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsExpired,
			Help: HelpTextEventsExpired,
		},
	)

	EventsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsCancelled,
			Help: HelpTextEventsCancelled,
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCacheLookups,
			Help: HelpTextCacheLookups,
		},
		[]string{LabelResult},
	)
)

// Player Metrics
var (
	ProgressUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameProgressUpdates,
			Help: HelpTextProgressUpdates,
		},
	)

	Completions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCompletions,
			Help: HelpTextCompletions,
		},
	)

	RewardGrants = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRewardGrants,
			Help: HelpTextRewardGrants,
		},
		[]string{LabelOutcome},
	)
)

// Scheduler Metrics
var (
	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSchedulerRuns,
			Help: HelpTextSchedulerRuns,
		},
		[]string{LabelClass, LabelOutcome},
	)

	SchedulerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameSchedulerDuration,
			Help:    HelpTextSchedulerDuration,
			Buckets: SchedulerBuckets,
		},
		[]string{LabelClass},
	)
)
