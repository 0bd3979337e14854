package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gorm.io/gorm"

	"fleetly/internal/config"
	"fleetly/internal/geo"
	"fleetly/internal/models"
	"fleetly/internal/routing"
)

// routeProvider is wired by main once configuration is loaded; nil means the
// routing collaborator is unavailable and corridor requests fail soft.
var routeProvider routing.Provider

// SetRouteProvider installs the routing collaborator used for corridors.
func SetRouteProvider(p routing.Provider) {
	routeProvider = p
}

type createTripInput struct {
	DriverID      uint      `json:"driver_id" binding:"required"`
	VehicleID     uint      `json:"vehicle_id" binding:"required"`
	StartLocation string    `json:"start_location" binding:"required"`
	EndLocation   string    `json:"end_location" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	VehicleType   string    `json:"vehicle_type"`
	Passengers    *int      `json:"passengers"`
	LoadWeightKg  *float64  `json:"load_weight_kg"`
}

// CreateTrip dispatches a new trip to a driver (manager role) and pushes the
// change into the driver's live feed.
func CreateTrip(c *gin.Context) {
	var input createTripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, input.DriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "driver does not exist"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, input.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle does not exist"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	vehicleType := input.VehicleType
	if vehicleType == "" {
		vehicleType = vehicle.VehicleType
	}

	trip := models.Trip{
		DriverID:      input.DriverID,
		VehicleID:     input.VehicleID,
		StartLocation: input.StartLocation,
		EndLocation:   input.EndLocation,
		Date:          input.StartTime.Format("2006-01-02"),
		Time:          input.StartTime.Format("15:04"),
		StartTime:     input.StartTime,
		Status:        models.TripAssigned,
		VehicleType:   vehicleType,
		Passengers:    input.Passengers,
		LoadWeightKg:  input.LoadWeightKg,
	}

	if err := config.DB.Create(&trip).Error; err != nil {
		logrus.WithError(err).Error("Failed to create trip.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create trip"})
		return
	}

	tripHub.Publish(trip.DriverID)

	logrus.WithFields(logrus.Fields{
		"trip_id":   trip.ID,
		"driver_id": trip.DriverID,
	}).Info("Trip dispatched to driver.")

	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

// ListFleetTrips lists every trip, optionally filtered by status (manager role).
func ListFleetTrips(c *gin.Context) {
	q := config.DB.Order("start_time desc")
	if status := c.Query("status"); status != "" {
		if !models.TripStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var trips []models.Trip
	if err := q.Find(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trips"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// CancelTrip cancels a trip (manager role) and updates the driver's feed.
func CancelTrip(c *gin.Context) {
	trip, ok := tripByParam(c)
	if !ok {
		return
	}
	transitionTrip(c, trip, models.TripCancelled)
}

// ListMyTrips lists the authenticated driver's trips, newest first.
func ListMyTrips(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	q := config.DB.Where("driver_id = ?", driver.ID).Order("start_time desc")
	if status := c.Query("status"); status != "" {
		if !models.TripStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var trips []models.Trip
	if err := q.Find(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trips"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// StartTrip moves one of the driver's trips to in_progress.
func StartTrip(c *gin.Context) {
	trip, ok := ownedTripByParam(c)
	if !ok {
		return
	}
	transitionTrip(c, trip, models.TripInProgress)
}

// CompleteTrip finishes an in-progress trip and stamps its end time.
func CompleteTrip(c *gin.Context) {
	trip, ok := ownedTripByParam(c)
	if !ok {
		return
	}
	transitionTrip(c, trip, models.TripCompleted)
}

// ReportTripDelay marks one of the driver's trips as delayed.
func ReportTripDelay(c *gin.Context) {
	trip, ok := ownedTripByParam(c)
	if !ok {
		return
	}
	transitionTrip(c, trip, models.TripDelayed)
}

// TripCorridor fetches the route for one of the driver's trips and returns
// the deviation corridor polygon as GeoJSON alongside the route itself.
func TripCorridor(c *gin.Context) {
	trip, ok := ownedTripByParam(c)
	if !ok {
		return
	}

	if routeProvider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "routing service not configured"})
		return
	}

	route, err := routeProvider.Route(c.Request.Context(), trip.StartLocation, trip.EndLocation)
	if err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("Route lookup failed for corridor request.")
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not resolve route for trip"})
		return
	}

	corridor := geo.BuildCorridor(route.Path, geo.DefaultCorridorToleranceMeters)
	polygon, err := geojson.Marshal(geo.CorridorPolygon(corridor))
	if err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Error("Failed to encode corridor polygon.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode corridor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip_id":          trip.ID,
		"route":            route,
		"tolerance_meters": geo.DefaultCorridorToleranceMeters,
		"corridor_geojson": json.RawMessage(polygon),
	})
}

// tripByParam loads the trip named by the :id path parameter.
func tripByParam(c *gin.Context) (*models.Trip, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return nil, false
	}

	var trip models.Trip
	if err := config.DB.First(&trip, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return nil, false
	}
	return &trip, true
}

// ownedTripByParam loads the trip and verifies it belongs to the
// authenticated driver.
func ownedTripByParam(c *gin.Context) (*models.Trip, bool) {
	driver, ok := driverForUser(c)
	if !ok {
		return nil, false
	}

	trip, ok := tripByParam(c)
	if !ok {
		return nil, false
	}

	if trip.DriverID != driver.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "trip is not assigned to you"})
		return nil, false
	}
	return trip, true
}

// transitionTrip applies a lifecycle transition, persists it, and pushes the
// change into the driver's live feed.
func transitionTrip(c *gin.Context, trip *models.Trip, next models.TripStatus) {
	if !trip.Status.CanTransition(next) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "cannot move trip from " + string(trip.Status) + " to " + string(next),
		})
		return
	}

	trip.Status = next
	if next == models.TripCompleted {
		now := time.Now()
		trip.EndTime = &now
	}

	if err := config.DB.Save(trip).Error; err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Error("Failed to update trip status.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update trip"})
		return
	}

	tripHub.Publish(trip.DriverID)

	logrus.WithFields(logrus.Fields{
		"trip_id":   trip.ID,
		"driver_id": trip.DriverID,
		"status":    next,
	}).Info("Trip status updated.")

	c.JSON(http.StatusOK, gin.H{"trip": trip})
}
