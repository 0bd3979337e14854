package attendance

import "time"

// DateFormat is the calendar-day key used for attendance rows.
const DateFormat = "2006-01-02"

// Clock supplies the process-wide current time used to derive the day key.
// Injected so tests can simulate day rollover deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
