package models

import "testing"

func TestAttendanceClockedIn(t *testing.T) {
	var rec *AttendanceRecord
	if rec.ClockedIn() {
		t.Error("nil record should not report clocked-in")
	}

	rec = &AttendanceRecord{}
	if rec.ClockedIn() {
		t.Error("empty record should not report clocked-in")
	}

	rec.Events = ClockEvents{{Type: ClockIn}}
	if !rec.ClockedIn() {
		t.Error("record ending in clock-in should report clocked-in")
	}

	rec.Events = append(rec.Events, ClockEvent{Type: ClockOut})
	if rec.ClockedIn() {
		t.Error("record ending in clock-out should not report clocked-in")
	}
}

func TestClockEventsScanRoundTrip(t *testing.T) {
	events := ClockEvents{{Type: ClockIn}, {Type: ClockOut}}

	raw, err := events.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded ClockEvents
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Type != ClockIn || decoded[1].Type != ClockOut {
		t.Fatalf("decoded = %v, want clock_in then clock_out", decoded)
	}

	var fromNil ClockEvents
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fromNil) != 0 {
		t.Fatalf("scan of nil = %v, want empty", fromNil)
	}
}
