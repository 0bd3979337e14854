package tripfeed

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fleetly/internal/models"
)

// ChangeType classifies one entry of the diff delivered with a feed update.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Change is a single classified diff entry since the previous delivery.
type Change struct {
	Type ChangeType
	Trip TripView
}

// TripView is the validated, wire-ready projection of a trip row. Rows that
// fail validation are skipped one by one so a malformed trip can never block
// the rest of the feed.
type TripView struct {
	ID            uint              `json:"id"`
	DriverID      uint              `json:"driver_id"`
	VehicleID     uint              `json:"vehicle_id"`
	StartLocation string            `json:"start_location"`
	EndLocation   string            `json:"end_location"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       *time.Time        `json:"end_time,omitempty"`
	Status        models.TripStatus `json:"status"`
	VehicleType   string            `json:"vehicle_type"`
	Passengers    *int              `json:"passengers,omitempty"`
	LoadWeightKg  *float64          `json:"load_weight_kg,omitempty"`
}

var errMalformedTrip = errors.New("malformed trip document")

// DecodeTrip validates one trip row into a TripView. Required fields: id,
// driver, both locations, a start time, and a known status.
func DecodeTrip(t models.Trip) (TripView, error) {
	switch {
	case t.ID == 0:
		return TripView{}, fmt.Errorf("%w: missing id", errMalformedTrip)
	case t.DriverID == 0:
		return TripView{}, fmt.Errorf("%w: trip %d missing driver", errMalformedTrip, t.ID)
	case t.StartLocation == "" || t.EndLocation == "":
		return TripView{}, fmt.Errorf("%w: trip %d missing locations", errMalformedTrip, t.ID)
	case t.StartTime.IsZero():
		return TripView{}, fmt.Errorf("%w: trip %d missing start time", errMalformedTrip, t.ID)
	case !t.Status.Valid():
		return TripView{}, fmt.Errorf("%w: trip %d has unknown status %q", errMalformedTrip, t.ID, t.Status)
	}

	return TripView{
		ID:            t.ID,
		DriverID:      t.DriverID,
		VehicleID:     t.VehicleID,
		StartLocation: t.StartLocation,
		EndLocation:   t.EndLocation,
		Date:          t.Date,
		Time:          t.Time,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Status:        t.Status,
		VehicleType:   t.VehicleType,
		Passengers:    t.Passengers,
		LoadWeightKg:  t.LoadWeightKg,
	}, nil
}

// Session is the per-subscription feed state: which trip ids have been
// observed, and whether the first update since subscribing is still pending.
// Owned exclusively by one subscriber; built fresh on subscribe, discarded
// on unsubscribe, so the initial-load squelch re-arms on every resubscribe.
type Session struct {
	known       map[uint]struct{}
	initialLoad bool
}

func NewSession() *Session {
	return &Session{known: make(map[uint]struct{}), initialLoad: true}
}

// Apply processes one feed update: the full current matching set plus the
// classified diff since the previous delivery. It returns the visible trip
// list, sorted by ascending start time, and the trips that should trigger a
// new-trip notification.
//
// An added trip notifies only when its id has never been observed and the
// update is not the initial snapshot; its id is recorded either way, so the
// first snapshot never notifies and duplicate delivery of the same addition
// is idempotent.
func (s *Session) Apply(snapshot []TripView, changes []Change) (visible []TripView, fresh []TripView) {
	visible = make([]TripView, len(snapshot))
	copy(visible, snapshot)
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].StartTime.Before(visible[j].StartTime)
	})

	for _, c := range changes {
		if c.Type != ChangeAdded {
			continue
		}
		if _, seen := s.known[c.Trip.ID]; seen {
			continue
		}
		if !s.initialLoad {
			fresh = append(fresh, c.Trip)
		}
		s.known[c.Trip.ID] = struct{}{}
	}

	s.initialLoad = false
	return visible, fresh
}
