package recurring

// Class names a recurring event class
type Class string

// Recurring classes
const (
	ClassDaily    Class = "daily"
	ClassWeekly   Class = "weekly"
	ClassSeasonal Class = "seasonal"
	ClassWeather  Class = "weather"
	ClassSpecial  Class = "special"
	ClassPattern  Class = "pattern"
)

// Classes lists every class in evaluation order
var Classes = []Class{ClassDaily, ClassWeekly, ClassSeasonal, ClassWeather, ClassSpecial, ClassPattern}

// Outcome of one class tick
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
)

// CatalogEnvPrefix prefixes catalog environment overrides
const CatalogEnvPrefix = "CATALOG_"

// Metadata keys written on auto-created events
const (
	MetaSource          = "source"
	MetaClass           = "class"
	MetaWeather         = "weather"
	MetaTemplateID      = "template_id"
	MetaOccurrenceStart = "occurrence_start"
	MetaOccurrenceMins  = "occurrence_minutes"

	SourceScheduler = "scheduler"
)

// Weather reward fallback key
const WeatherRewardDefault = "default"

// Error messages
const (
	ErrMsgCatalogLoad    = "failed to load event catalog"
	ErrMsgCatalogInvalid = "invalid event catalog"
	ErrMsgCatalogDecode  = "failed to decode event catalog"
	ErrMsgUnknownClass   = "unknown recurring class"
	ErrMsgBadPattern     = "invalid recurrence pattern"
)

// Log messages
const (
	LogMsgTickStarted       = "Recurring tick started"
	LogMsgEventExists       = "Event already exists for period, skipping"
	LogMsgEventCreated      = "Recurring event created"
	LogMsgTickFailed        = "Recurring tick failed"
	LogMsgWeatherClear      = "Weather is clear, no weather event"
	LogMsgWeatherActive     = "Weather event already active"
	LogMsgWeatherDisabled   = "No weather provider configured"
	LogMsgPatternInvalid    = "Skipping template with invalid recurrence pattern"
	LogMsgPatternNoCurrent  = "No current occurrence for template"
	LogMsgPatternOccurrence = "Occurrence created for template"
)
