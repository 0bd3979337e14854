package models

import (
	"time"

	"gorm.io/gorm"
)

// TripStatus is the lifecycle state of a trip. Only the transitions in
// tripTransitions are legal; everything else is rejected by controllers.
type TripStatus string

const (
	TripAssigned   TripStatus = "assigned"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripDelayed    TripStatus = "delayed"
	TripCancelled  TripStatus = "cancelled"
)

var tripTransitions = map[TripStatus][]TripStatus{
	TripAssigned:   {TripInProgress, TripDelayed, TripCancelled},
	TripInProgress: {TripCompleted, TripDelayed, TripCancelled},
	TripDelayed:    {TripInProgress, TripCancelled},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s TripStatus) CanTransition(next TripStatus) bool {
	for _, t := range tripTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known lifecycle states.
func (s TripStatus) Valid() bool {
	switch s {
	case TripAssigned, TripInProgress, TripCompleted, TripDelayed, TripCancelled:
		return true
	}
	return false
}

// Trip is a dispatched job owned by exactly one driver at a time.
// Created by a fleet manager, mutated by driver lifecycle actions.
type Trip struct {
	gorm.Model
	DriverID      uint       `json:"driver_id" gorm:"index"`
	VehicleID     uint       `json:"vehicle_id" gorm:"index"`
	StartLocation string     `json:"start_location"` // free-text address
	EndLocation   string     `json:"end_location"`   // free-text address
	Date          string     `json:"date"`           // display string, e.g. "2026-08-31"
	Time          string     `json:"time"`           // display string, e.g. "08:30"
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Status        TripStatus `json:"status" gorm:"index;default:assigned"`
	VehicleType   string     `json:"vehicle_type"`
	Passengers    *int       `json:"passengers,omitempty"`
	LoadWeightKg  *float64   `json:"load_weight_kg,omitempty"`
}
