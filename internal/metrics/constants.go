package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Notification metric names
const (
	MetricNameNotificationsPublished = "liveops_notifications_published_total"
)

// Lifecycle metric names
const (
	MetricNameEventsCreated     = "liveops_events_created_total"
	MetricNameEventsExpired     = "liveops_events_expired_total"
	MetricNameEventsCancelled   = "liveops_events_cancelled_total"
	MetricNameCacheLookups      = "liveops_cache_lookups_total"
	MetricNameProgressUpdates   = "liveops_progress_updates_total"
	MetricNameCompletions       = "liveops_completions_total"
	MetricNameRewardGrants      = "liveops_reward_grants_total"
	MetricNameSchedulerRuns     = "liveops_scheduler_runs_total"
	MetricNameSchedulerDuration = "liveops_scheduler_run_duration_seconds"
)

// ============================================================================
// Metric Help Text
// ============================================================================

const (
	HelpTextHTTPRequestsTotal      = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration    = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight   = "Current number of HTTP requests being served"
	HelpTextNotificationsPublished = "Lifecycle notifications delivered to the bus"
	HelpTextEventsCreated          = "Events created, by event type"
	HelpTextEventsExpired          = "Events deactivated by the expiry sweep"
	HelpTextEventsCancelled        = "Events cancelled administratively"
	HelpTextCacheLookups           = "Active-event cache lookups, by result"
	HelpTextProgressUpdates        = "Progress updates applied"
	HelpTextCompletions            = "First-time event completions"
	HelpTextRewardGrants           = "Individual reward grants, by outcome"
	HelpTextSchedulerRuns          = "Recurring scheduler runs, by class and outcome"
	HelpTextSchedulerDuration      = "Recurring scheduler run duration in seconds"
)

// ============================================================================
// Labels
// ============================================================================

const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelResult    = "result"
	LabelOutcome   = "outcome"
	LabelClass     = "class"
)

// Label values
const (
	ResultHit  = "hit"
	ResultMiss = "miss"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// PathUnmatched labels requests that did not match a route
const PathUnmatched = "unmatched"

// HTTPLatencyBuckets are the histogram buckets for request latency
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// SchedulerBuckets are the histogram buckets for scheduler runs
var SchedulerBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60}

// Log messages
const (
	LogMsgUnknownEventType = "Metrics collector received unknown event type"
)
