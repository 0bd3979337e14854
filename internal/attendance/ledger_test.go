package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fleetly/internal/models"
)

// memStore is an in-memory Store. Mutate serializes on a mutex, mirroring
// the row-lock guarantee the SQL store gets from the database.
type memStore struct {
	mu   sync.Mutex
	recs map[string]models.AttendanceRecord
	err  error
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]models.AttendanceRecord)}
}

func storeKey(driverID uint, date string) string {
	return fmt.Sprintf("%d|%s", driverID, date)
}

func (s *memStore) Mutate(ctx context.Context, driverID uint, date string, fn func(rec *models.AttendanceRecord) error) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	rec, ok := s.recs[storeKey(driverID, date)]
	if !ok {
		rec = models.AttendanceRecord{DriverID: driverID, Date: date, Events: models.ClockEvents{}}
	}
	if err := fn(&rec); err != nil {
		return nil, err
	}
	s.recs[storeKey(driverID, date)] = rec

	out := rec
	return &out, nil
}

func (s *memStore) Get(ctx context.Context, driverID uint, date string) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	rec, ok := s.recs[storeKey(driverID, date)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func testLedger(now time.Time) (*Ledger, *memStore, *fakeClock) {
	store := newMemStore()
	clock := &fakeClock{now: now}
	return NewLedger(store, clock, time.UTC), store, clock
}

func at(hour, min, sec int) time.Time {
	return time.Date(2026, 8, 31, hour, min, sec, 0, time.UTC)
}

func TestRecordClockEventAccumulatesPair(t *testing.T) {
	ledger, _, _ := testLedger(at(9, 0, 0))
	ctx := context.Background()

	total, err := ledger.RecordClockEvent(ctx, 1, models.ClockIn, at(9, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Fatalf("total after clock-in = %d, want 0", total)
	}

	total, err = ledger.RecordClockEvent(ctx, 1, models.ClockOut, at(9, 30, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1800 {
		t.Fatalf("total after clock-out = %d, want 1800", total)
	}

	// An open trailing clock-in contributes nothing until closed.
	total, err = ledger.RecordClockEvent(ctx, 1, models.ClockIn, at(10, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1800 {
		t.Fatalf("total after second clock-in = %d, want 1800", total)
	}
}

func TestClockOutWithoutClockInIsQuietNoOp(t *testing.T) {
	ledger, _, _ := testLedger(at(9, 0, 0))

	total, err := ledger.RecordClockEvent(context.Background(), 1, models.ClockOut, at(9, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
}

func TestFirstEventCreatesRecord(t *testing.T) {
	ledger, store, _ := testLedger(at(8, 15, 0))

	if _, err := ledger.RecordClockEvent(context.Background(), 7, models.ClockIn, at(8, 15, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := store.Get(context.Background(), 7, "2026-08-31")
	if err != nil || rec == nil {
		t.Fatalf("expected record, got rec=%v err=%v", rec, err)
	}
	if !rec.FirstClockIn.Equal(at(8, 15, 0)) {
		t.Errorf("FirstClockIn = %v, want %v", rec.FirstClockIn, at(8, 15, 0))
	}
	if len(rec.Events) != 1 {
		t.Errorf("events length = %d, want 1", len(rec.Events))
	}
	if !rec.ClockedIn() {
		t.Error("record should report clocked-in after a clock-in event")
	}
}

func TestMultiplePairsSumUp(t *testing.T) {
	ledger, store, _ := testLedger(at(7, 0, 0))
	ctx := context.Background()

	// 07:00-07:45 and 09:00-09:10: 2700 + 600 seconds.
	steps := []struct {
		typ models.ClockEventType
		ts  time.Time
	}{
		{models.ClockIn, at(7, 0, 0)},
		{models.ClockOut, at(7, 45, 0)},
		{models.ClockIn, at(9, 0, 0)},
		{models.ClockOut, at(9, 10, 0)},
	}

	var total int64
	var err error
	for _, s := range steps {
		total, err = ledger.RecordClockEvent(ctx, 3, s.typ, s.ts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if total != 3300 {
		t.Fatalf("total = %d, want 3300", total)
	}

	// The incremental aggregate must agree with a full recompute.
	rec, _ := store.Get(ctx, 3, "2026-08-31")
	if got := WorkedSeconds(rec.Events); got != rec.TotalWorkedSeconds {
		t.Errorf("WorkedSeconds recompute = %d, stored total = %d", got, rec.TotalWorkedSeconds)
	}
}

func TestTodayWorkedSecondsAbsentIsZero(t *testing.T) {
	ledger, _, _ := testLedger(at(12, 0, 0))

	total, err := ledger.TodayWorkedSeconds(context.Background(), 99)
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
}

func TestRecordAbsentIsNilNotError(t *testing.T) {
	ledger, _, _ := testLedger(at(12, 0, 0))

	rec, err := ledger.Record(context.Background(), 99, "2026-01-01")
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestRecordReadIsIdempotent(t *testing.T) {
	ledger, _, _ := testLedger(at(9, 0, 0))
	ctx := context.Background()

	ledger.RecordClockEvent(ctx, 1, models.ClockIn, at(9, 0, 0))
	ledger.RecordClockEvent(ctx, 1, models.ClockOut, at(9, 30, 0))

	first, err := ledger.Record(ctx, 1, "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ledger.Record(ctx, 1, "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalWorkedSeconds != second.TotalWorkedSeconds || len(first.Events) != len(second.Events) {
		t.Errorf("repeated reads differ: %+v vs %+v", first, second)
	}
}

func TestDayRolloverSplitsRecords(t *testing.T) {
	ledger, store, clock := testLedger(at(23, 50, 0))
	ctx := context.Background()

	ledger.RecordClockEvent(ctx, 5, models.ClockIn, at(23, 50, 0))

	// Day flips; the open pair from yesterday never closes.
	clock.now = time.Date(2026, 9, 1, 0, 10, 0, 0, time.UTC)
	total, err := ledger.RecordClockEvent(ctx, 5, models.ClockOut, clock.now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Fatalf("new-day total = %d, want 0 (no clock-in on the new day)", total)
	}

	yesterday, _ := store.Get(ctx, 5, "2026-08-31")
	today, _ := store.Get(ctx, 5, "2026-09-01")
	if yesterday == nil || today == nil {
		t.Fatal("expected one record per calendar day")
	}
	if yesterday.TotalWorkedSeconds != 0 {
		t.Errorf("yesterday total = %d, want 0 (open clock-in)", yesterday.TotalWorkedSeconds)
	}
}

func TestStorageFailureWrapsErrStorage(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	ledger := NewLedger(store, &fakeClock{now: at(9, 0, 0)}, time.UTC)

	_, err := ledger.RecordClockEvent(context.Background(), 1, models.ClockIn, at(9, 0, 0))
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	_, err = ledger.TodayWorkedSeconds(context.Background(), 1)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage from read, got %v", err)
	}
}

func TestWorkedSecondsIgnoresOpenTrailingClockIn(t *testing.T) {
	events := models.ClockEvents{
		{Type: models.ClockIn, Timestamp: at(9, 0, 0)},
		{Type: models.ClockOut, Timestamp: at(9, 30, 0)},
		{Type: models.ClockIn, Timestamp: at(10, 0, 0)},
	}
	if got := WorkedSeconds(events); got != 1800 {
		t.Fatalf("WorkedSeconds = %d, want 1800", got)
	}
}

func TestWorkedSecondsEmpty(t *testing.T) {
	if got := WorkedSeconds(nil); got != 0 {
		t.Fatalf("WorkedSeconds(nil) = %d, want 0", got)
	}
}
