package dates

import (
	"fmt"
	"os"
	"time"
)

// Location is the application's timezone. It stays UTC until
// InitializeDateLocation runs.
var Location = time.UTC

// InitializeDateLocation loads APP_TIMEZONE, America/Recife by default.
func InitializeDateLocation() error {
	timezone := os.Getenv("APP_TIMEZONE")
	if timezone == "" {
		timezone = "America/Recife"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("load timezone %s: %w", timezone, err)
	}
	Location = loc
	return nil
}

// Today is the current calendar date in the application's timezone.
func Today() DateOnly {
	return FromTime(time.Now())
}

// FromTime keeps only the calendar date of t as seen in Location.
func FromTime(t time.Time) DateOnly {
	y, m, d := t.In(Location).Date()
	return DateOnly(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
