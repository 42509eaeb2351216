package scheduling

import (
	"strings"
	"time"

	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// Accepted input layouts. 24-hour clock throughout.
var (
	dateTimeLayouts = []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
	}
	timeOnlyLayouts = []string{
		"15:04",
		"15:04:05",
	}
)

// ParseDateTime parses a full date-time in the clinic timezone. On failure
// it returns a validation error naming the expected format; it never
// proceeds with guessed defaults.
func ParseDateTime(raw string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, types.NewValidationError(types.ErrCodeInvalidDateTime,
		"invalid date format; please use YYYY-MM-DD HH:MM (e.g. 2025-11-25 14:00)",
		map[string]interface{}{"input": raw})
}

// ParseDateTimeOrTime parses either a full date-time or a bare time of
// day. A bare time keeps baseDate's date and replaces hour and minute,
// which is the reschedule-in-place form.
func ParseDateTimeOrTime(raw string, baseDate time.Time, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)

	for _, layout := range timeOnlyLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			base := baseDate.In(loc)
			return time.Date(base.Year(), base.Month(), base.Day(),
				t.Hour(), t.Minute(), 0, 0, loc), nil
		}
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, types.NewValidationError(types.ErrCodeInvalidDateTime,
		"invalid date/time format; use HH:MM for time only (e.g. 15:00) or YYYY-MM-DD HH:MM for a full date and time (e.g. 2025-11-25 15:00)",
		map[string]interface{}{"input": raw})
}

// FormatDisplayTime renders a time for patient-facing messages
func FormatDisplayTime(t time.Time) string {
	return t.Format("Monday, January 2, 2006 at 3:04 PM")
}
