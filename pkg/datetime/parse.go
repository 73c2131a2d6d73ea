// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
)

const (
	// DateLayout is the machine-readable date format used in CSV and JSON output.
	DateLayout = "2006-01-02"

	// DisplayLayout is the human-readable date format used in pretty output.
	DisplayLayout = "January 02, 2006"
)

// Strategy selects how whole years and months are converted into calendar
// offsets for payoff projections.
type Strategy string

const (
	// ApproximateCalendar counts a year as 365 days and a month as 30 days.
	ApproximateCalendar Strategy = "approximate"

	// CalendarMonths uses exact calendar arithmetic (time.AddDate).
	CalendarMonths Strategy = "calendar"
)

// ParseStrategy maps a configuration value onto a Strategy. The empty string
// selects ApproximateCalendar.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(value) {
	case "", ApproximateCalendar:
		return ApproximateCalendar, nil
	case CalendarMonths:
		return CalendarMonths, nil
	default:
		return "", fmt.Errorf("unknown date strategy %q, expected %s or %s", value, ApproximateCalendar, CalendarMonths)
	}
}

// AddYears offsets t by the given number of years.
func (s Strategy) AddYears(t time.Time, years int) time.Time {
	if s == CalendarMonths {
		return t.AddDate(years, 0, 0)
	}
	return t.AddDate(0, 0, constants.DaysPerApproximateYear*years)
}

// AddMonths offsets t by the given number of months.
func (s Strategy) AddMonths(t time.Time, months int) time.Time {
	if s == CalendarMonths {
		return t.AddDate(0, months, 0)
	}
	return t.AddDate(0, 0, constants.DaysPerApproximateMonth*months)
}

// StartOfYear returns January 1st of the given year in UTC.
func StartOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}
