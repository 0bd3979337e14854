package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ClockEventType string

const (
	ClockIn  ClockEventType = "clock_in"
	ClockOut ClockEventType = "clock_out"
)

// ClockEvent is a single clock toggle action. Immutable once recorded.
type ClockEvent struct {
	Type      ClockEventType `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
}

// ClockEvents is the append-only event sequence stored as JSONB on the
// attendance record, ordered as received.
type ClockEvents []ClockEvent

func (e ClockEvents) Value() (driver.Value, error) {
	if e == nil {
		e = ClockEvents{}
	}
	return json.Marshal(e)
}

func (e *ClockEvents) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*e = ClockEvents{}
		return nil
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("clock events: cannot scan %T", src)
	}
}

// AttendanceRecord holds one driver-day of clock events plus the running
// worked-time aggregate. One row per (driver, date); created on the first
// event of the day, mutated on every later one, never deleted.
type AttendanceRecord struct {
	gorm.Model
	DriverID           uint        `json:"driver_id" gorm:"uniqueIndex:idx_attendance_driver_date"`
	Date               string      `json:"date" gorm:"size:10;uniqueIndex:idx_attendance_driver_date"` // "2006-01-02"
	FirstClockIn       time.Time   `json:"first_clock_in"`
	Events             ClockEvents `json:"events" gorm:"type:jsonb"`
	TotalWorkedSeconds int64       `json:"total_worked_seconds"`
	LastUpdated        time.Time   `json:"last_updated"`
}

// ClockedIn reports the toggle state the client derives from the event log:
// clocked in exactly when the last event is a clock-in.
func (r *AttendanceRecord) ClockedIn() bool {
	if r == nil || len(r.Events) == 0 {
		return false
	}
	return r.Events[len(r.Events)-1].Type == ClockIn
}
