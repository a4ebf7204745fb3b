package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/timewindow"
)

var (
	structValidator *validator.Validate
	structOnce      sync.Once
)

// Struct returns the shared tag validator with the custom rules registered.
func Struct() *validator.Validate {
	structOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names instead of Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("timezone", validateTimezone)
		_ = v.RegisterValidation("event_type", validateEventType)
		_ = v.RegisterValidation("rrule", validateRRule)

		structValidator = v
	})
	return structValidator
}

// ValidateStruct validates s by tags and returns a *domain.ValidationError on failure.
func ValidateStruct(s any) error {
	if err := Struct().Struct(s); err != nil {
		return domain.NewValidationError(domain.ErrInvalidInput, FormatValidationError(err))
	}
	return nil
}

// ValidateEventSpec checks required fields, formats and the interval.
// Wall-clock times are compared after conversion through the event's zone.
func ValidateEventSpec(spec domain.EventSpec) error {
	if err := ValidateStruct(spec); err != nil {
		return err
	}

	loc, err := timewindow.LoadLocation(spec.Timezone)
	if err != nil {
		return domain.NewValidationError(domain.ErrInvalidTimezone, map[string]string{"timezone": "Unknown time zone"})
	}
	start := timewindow.ToUTC(spec.StartTime, loc)
	end := timewindow.ToUTC(spec.EndTime, loc)
	if !start.Before(end) {
		return domain.NewValidationError(domain.ErrInvertedInterval, map[string]string{"end_time": "Must be after start_time"})
	}

	if spec.IsRecurring && spec.RecurrencePattern == "" {
		return domain.NewValidationError(domain.ErrInvalidInput, map[string]string{"recurrence_pattern": "Required for recurring events"})
	}
	return nil
}

// FormatValidationError formats validation errors into a user-friendly map
// This prevents leaking internal struct names and provides cleaner error messages
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "timezone":
			errs[field] = "Unknown time zone"
		case "event_type":
			errs[field] = "Must be lowercase letters, digits and underscores"
		case "rrule":
			errs[field] = "Invalid recurrence rule"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s characters", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

func validateTimezone(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return true
	}
	_, err := timewindow.LoadLocation(name)
	return err == nil
}

// event types are an open set but keep a stable slug shape
func validateEventType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

func validateRRule(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := rrule.StrToROption(strings.TrimPrefix(s, "RRULE:"))
	return err == nil
}
