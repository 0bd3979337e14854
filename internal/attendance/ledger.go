package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fleetly/internal/models"
)

// ErrStorage wraps any failure of the backing store. Operations that return
// it are safe to retry; note that a retried clock event is appended again
// rather than deduplicated.
var ErrStorage = errors.New("attendance storage failure")

// Store is the transactional persistence port for attendance records.
// Mutate must run fn inside an atomic read-modify-write on the single
// (driver, date) row: concurrent callers for the same key are serialized by
// the store, never by the ledger.
type Store interface {
	// Mutate loads the record for (driverID, date), creating a zero-valued
	// one if absent, applies fn, and persists the result atomically.
	Mutate(ctx context.Context, driverID uint, date string, fn func(rec *models.AttendanceRecord) error) (*models.AttendanceRecord, error)
	// Get returns the record, or (nil, nil) when none exists for that day.
	Get(ctx context.Context, driverID uint, date string) (*models.AttendanceRecord, error)
}

// Ledger maintains the per-driver-per-day worked-time aggregate from a
// stream of clock toggle events. The ledger itself is stateless per call;
// the clocked-in/out toggle is derived by the caller from the event log.
type Ledger struct {
	store Store
	clock Clock
	loc   *time.Location
}

// NewLedger builds a ledger over the given store. A nil location defaults to
// the process-local zone.
func NewLedger(store Store, clock Clock, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{store: store, clock: clock, loc: loc}
}

func (l *Ledger) dayKey() string {
	return l.clock.Now().In(l.loc).Format(DateFormat)
}

// RecordClockEvent appends one clock event to today's record for the driver
// and returns the updated running total in seconds.
//
// The append, pairing, and total update run inside a single store
// transaction. A clock-out pairs with the most recent prior clock-in in the
// appended sequence; a clock-out with no prior clock-in accumulates nothing
// and is tolerated quietly.
func (l *Ledger) RecordClockEvent(ctx context.Context, driverID uint, eventType models.ClockEventType, timestamp time.Time) (int64, error) {
	date := l.dayKey()

	rec, err := l.store.Mutate(ctx, driverID, date, func(rec *models.AttendanceRecord) error {
		applyClockEvent(rec, models.ClockEvent{Type: eventType, Timestamp: timestamp})
		rec.LastUpdated = l.clock.Now()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: record clock event for driver %d on %s: %v", ErrStorage, driverID, date, err)
	}

	logrus.WithFields(logrus.Fields{
		"driver_id":            driverID,
		"date":                 date,
		"event_type":           eventType,
		"total_worked_seconds": rec.TotalWorkedSeconds,
	}).Info("Recorded clock event.")

	return rec.TotalWorkedSeconds, nil
}

// TodayWorkedSeconds returns the running total for today's record, or 0 when
// the driver has no record yet. Absence is not an error.
func (l *Ledger) TodayWorkedSeconds(ctx context.Context, driverID uint) (int64, error) {
	rec, err := l.Record(ctx, driverID, l.dayKey())
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}
	return rec.TotalWorkedSeconds, nil
}

// Record returns the attendance record for the given day, or (nil, nil) when
// none exists. The caller can always tell absence apart from failure.
func (l *Ledger) Record(ctx context.Context, driverID uint, date string) (*models.AttendanceRecord, error) {
	rec, err := l.store.Get(ctx, driverID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch attendance for driver %d on %s: %v", ErrStorage, driverID, date, err)
	}
	return rec, nil
}

// applyClockEvent appends ev to the record and, for a clock-out, adds the
// elapsed whole seconds since the most recent prior clock-in to the total.
// A brand-new record takes its FirstClockIn from the first event seen.
func applyClockEvent(rec *models.AttendanceRecord, ev models.ClockEvent) {
	if len(rec.Events) == 0 && rec.FirstClockIn.IsZero() {
		rec.FirstClockIn = ev.Timestamp
	}

	rec.Events = append(rec.Events, ev)

	if ev.Type != models.ClockOut {
		return
	}

	// Walk backwards past the event just appended.
	for i := len(rec.Events) - 2; i >= 0; i-- {
		if rec.Events[i].Type == models.ClockIn {
			delta := int64(ev.Timestamp.Sub(rec.Events[i].Timestamp).Seconds())
			if delta > 0 {
				rec.TotalWorkedSeconds += delta
			}
			return
		}
	}
	// No prior clock-in: tolerated anomaly, nothing accumulates.
}

// WorkedSeconds recomputes the aggregate from scratch: the sum of elapsed
// whole seconds over every completed (clock-in, clock-out) pair, in order.
// An open trailing clock-in contributes nothing until closed.
func WorkedSeconds(events models.ClockEvents) int64 {
	var total int64
	var openIn *time.Time
	for i := range events {
		switch events[i].Type {
		case models.ClockIn:
			t := events[i].Timestamp
			openIn = &t
		case models.ClockOut:
			if openIn != nil {
				if delta := int64(events[i].Timestamp.Sub(*openIn).Seconds()); delta > 0 {
					total += delta
				}
				openIn = nil
			}
		}
	}
	return total
}
