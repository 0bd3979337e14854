package tripfeed

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"fleetly/internal/models"
)

// TripSource loads the driver's current set of assigned trips. Implemented
// over the trip store; faked in tests.
type TripSource interface {
	AssignedTrips(ctx context.Context, driverID uint) ([]models.Trip, error)
}

// Hub fans live trip-feed updates out to connected driver clients. Each
// connection owns its own Session, so notification state is never shared
// across drivers or across reconnects of the same driver.
type Hub struct {
	source   TripSource
	notifier Notifier

	mu      sync.Mutex
	clients map[uint]map[*websocket.Conn]*Session

	updates chan uint
}

// NewHub creates the hub and starts its delivery goroutine.
func NewHub(source TripSource, notifier Notifier) *Hub {
	h := &Hub{
		source:   source,
		notifier: notifier,
		clients:  make(map[uint]map[*websocket.Conn]*Session),
		updates:  make(chan uint, 100),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for driverID := range h.updates {
		h.deliver(driverID)
	}
}

// Publish signals that the driver's assigned trip set changed. Called by
// trip controllers after every mutation that can affect the matching set.
func (h *Hub) Publish(driverID uint) {
	select {
	case h.updates <- driverID:
	default:
		logrus.WithField("driver_id", driverID).Warn("Trip feed update channel full, dropping signal.")
	}
}

// Register attaches a driver connection with a fresh Session and delivers
// the initial snapshot. The first delivery never fires notifications; it
// only seeds the session's known trip ids.
func (h *Hub) Register(driverID uint, conn *websocket.Conn) error {
	snapshot, changes, err := h.load(context.Background(), driverID)
	if err != nil {
		return fmt.Errorf("trip feed initial load for driver %d: %w", driverID, err)
	}

	session := NewSession()

	// Session state is only ever touched under h.mu.
	h.mu.Lock()
	defer h.mu.Unlock()

	visible, _ := session.Apply(snapshot, changes)
	if err := conn.WriteJSON(feedFrame{Type: "snapshot", Trips: visible}); err != nil {
		return fmt.Errorf("trip feed initial push for driver %d: %w", driverID, err)
	}

	if _, ok := h.clients[driverID]; !ok {
		h.clients[driverID] = make(map[*websocket.Conn]*Session)
	}
	h.clients[driverID][conn] = session

	logrus.WithFields(logrus.Fields{
		"driver_id": driverID,
		"conn_ptr":  fmt.Sprintf("%p", conn),
	}).Info("Driver registered with trip feed hub.")
	return nil
}

// Unregister detaches a connection and discards its Session immediately; no
// further notification can be emitted for that subscription. A later
// Register starts clean, re-arming the initial-load squelch.
func (h *Hub) Unregister(driverID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(driverID, conn)
}

// removeLocked drops a connection; callers must hold h.mu.
func (h *Hub) removeLocked(driverID uint, conn *websocket.Conn) {
	if conns, ok := h.clients[driverID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, driverID)
		}
	}
	logrus.WithFields(logrus.Fields{
		"driver_id": driverID,
		"conn_ptr":  fmt.Sprintf("%p", conn),
	}).Info("Driver unregistered from trip feed hub.")
}

// load fetches the current matching set and classifies every present row as
// an addition. The cumulative known-id set in each Session turns that into a
// true "newly assigned" diff, and makes duplicate delivery idempotent.
func (h *Hub) load(ctx context.Context, driverID uint) ([]TripView, []Change, error) {
	rows, err := h.source.AssignedTrips(ctx, driverID)
	if err != nil {
		return nil, nil, err
	}

	snapshot := make([]TripView, 0, len(rows))
	changes := make([]Change, 0, len(rows))
	for _, row := range rows {
		view, err := DecodeTrip(row)
		if err != nil {
			// One malformed trip must not block the rest of the feed.
			logrus.WithError(err).WithField("driver_id", driverID).Warn("Skipping malformed trip document in feed.")
			continue
		}
		snapshot = append(snapshot, view)
		changes = append(changes, Change{Type: ChangeAdded, Trip: view})
	}
	return snapshot, changes, nil
}

func (h *Hub) deliver(driverID uint) {
	snapshot, changes, err := h.load(context.Background(), driverID)
	if err != nil {
		logrus.WithError(err).WithField("driver_id", driverID).Error("Trip feed load failed, skipping delivery.")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, session := range h.clients[driverID] {
		visible, fresh := session.Apply(snapshot, changes)

		if err := conn.WriteJSON(feedFrame{Type: "snapshot", Trips: visible}); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"driver_id": driverID,
				"conn_ptr":  fmt.Sprintf("%p", conn),
			}).Warn("Failed to push trip snapshot, unregistering client.")
			h.removeLocked(driverID, conn)
			continue
		}

		for i := range fresh {
			h.notifier.NotifyNewTrip(driverID, fresh[i])
			if err := conn.WriteJSON(feedFrame{Type: "new_trip", Trip: &fresh[i]}); err != nil {
				logrus.WithError(err).WithField("driver_id", driverID).Warn("Failed to push new-trip frame.")
			}
		}
	}
}

type feedFrame struct {
	Type  string     `json:"type"`
	Trips []TripView `json:"trips,omitempty"`
	Trip  *TripView  `json:"trip,omitempty"`
}
