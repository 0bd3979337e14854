package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetly/internal/config"
	"fleetly/internal/middleware"
	"fleetly/internal/models"
	"fleetly/internal/tripfeed"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// gormTripSource feeds the hub the driver's current assigned trips.
type gormTripSource struct{}

func (gormTripSource) AssignedTrips(ctx context.Context, driverID uint) ([]models.Trip, error) {
	var trips []models.Trip
	err := config.GetDB().WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID, models.TripAssigned).
		Order("start_time asc").
		Find(&trips).Error
	return trips, err
}

var tripHub = tripfeed.NewHub(gormTripSource{}, tripfeed.LogNotifier{})

// authenticateDriverForFeed validates the JWT passed as a query parameter
// (mobile websocket clients cannot set headers) and resolves the driver
// actor record.
func authenticateDriverForFeed(c *gin.Context) (uint, error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		return 0, errors.New("missing authentication token")
	}

	claims, err := middleware.ValidateToken(tokenString)
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Role != "driver" {
		return 0, errors.New("unauthorized role for trip feed")
	}

	var driver models.Driver
	if err := config.DB.Where("user_id = ?", claims.UserID).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("driver profile not found for user ID %d", claims.UserID)
		}
		return 0, fmt.Errorf("database error fetching driver profile: %w", err)
	}
	return driver.ID, nil
}

// HandleTripFeedWebSocket upgrades a driver connection and attaches it to
// the trip feed hub. The driver receives the full snapshot immediately
// (notification-squelched), then a fresh snapshot plus new-trip alerts on
// every change to their assigned set. Closing the socket tears the
// subscription down; reconnecting starts clean.
func HandleTripFeedWebSocket(c *gin.Context) {
	driverID, authErr := authenticateDriverForFeed(c)
	if authErr != nil {
		logrus.WithError(authErr).Warn("Trip feed connection attempt rejected.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade trip feed connection.")
		return
	}
	defer conn.Close()

	if err := tripHub.Register(driverID, conn); err != nil {
		logrus.WithError(err).WithField("driver_id", driverID).Error("Trip feed registration failed.")
		return
	}
	defer tripHub.Unregister(driverID, conn)

	// The feed is server-push only; drain the socket until the client leaves.
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("driver_id", driverID).Info("Trip feed socket closed.")
			} else {
				logrus.WithError(err).Errorf("Error reading trip feed socket for Driver ID %d", driverID)
			}
			break
		}
		logrus.WithField("driver_id", driverID).Warn("Trip feed client sent unexpected message. Ignoring.")
	}
}
