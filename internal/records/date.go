package records

import (
	"strings"
	"time"
)

// DisplayDateLayout is the es-EC short date used throughout the report.
const DisplayDateLayout = "02/01/2006"

// dateLayouts are tried in order; slashed and dashed numeric dates are day-first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
}

// Date is a calendar date or, when the source could not be parsed, its raw text.
type Date struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// ParseDate tries each supported layout and keeps the raw text when none match.
func ParseDate(raw string) Date {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Date{Time: t, Raw: trimmed, Valid: true}
		}
	}
	return Date{Raw: trimmed}
}

// String renders the date as dd/mm/yyyy or returns the raw text verbatim.
func (d Date) String() string {
	if d.Valid {
		return d.Time.Format(DisplayDateLayout)
	}
	return d.Raw
}
