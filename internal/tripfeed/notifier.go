package tripfeed

import "github.com/sirupsen/logrus"

// Notifier delivers a best-effort local alert for a newly assigned trip.
// Fire and forget: no delivery confirmation ever comes back.
type Notifier interface {
	NotifyNewTrip(driverID uint, trip TripView)
}

// LogNotifier is the default Notifier; the actual push to the device happens
// over the driver's feed socket, so the server side only records the intent.
type LogNotifier struct{}

func (LogNotifier) NotifyNewTrip(driverID uint, trip TripView) {
	logrus.WithFields(logrus.Fields{
		"driver_id":      driverID,
		"trip_id":        trip.ID,
		"start_location": trip.StartLocation,
		"end_location":   trip.EndLocation,
	}).Info("New trip notification dispatched.")
}
