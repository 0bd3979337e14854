package models

import "testing"

func TestTripStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to TripStatus }{
		{TripAssigned, TripInProgress},
		{TripAssigned, TripCancelled},
		{TripAssigned, TripDelayed},
		{TripInProgress, TripCompleted},
		{TripInProgress, TripDelayed},
		{TripDelayed, TripInProgress},
		{TripDelayed, TripCancelled},
	}
	for _, c := range allowed {
		if !c.from.CanTransition(c.to) {
			t.Errorf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to TripStatus }{
		{TripCompleted, TripInProgress},
		{TripCancelled, TripAssigned},
		{TripAssigned, TripCompleted},
		{TripCompleted, TripCancelled},
	}
	for _, c := range denied {
		if c.from.CanTransition(c.to) {
			t.Errorf("%s -> %s should be denied", c.from, c.to)
		}
	}
}
