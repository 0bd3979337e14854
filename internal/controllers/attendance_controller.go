package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetly/internal/attendance"
	"fleetly/internal/config"
	"fleetly/internal/middleware"
	"fleetly/internal/models"
)

var ledger = attendance.NewLedger(
	attendance.NewGormStore(config.GetDB),
	attendance.SystemClock{},
	nil,
)

type clockEventInput struct {
	Type      models.ClockEventType `json:"type" binding:"required"`
	Timestamp *time.Time            `json:"timestamp"`
}

// driverForUser resolves the driver actor record for the authenticated user.
func driverForUser(c *gin.Context) (*models.Driver, bool) {
	userID := middleware.UserID(c)

	var driver models.Driver
	if err := config.DB.Where("user_id = ?", userID).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "driver profile not found"})
		} else {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to load driver profile.")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load driver profile"})
		}
		return nil, false
	}
	return &driver, true
}

// RecordClockEvent appends a clock-in/clock-out toggle for the authenticated
// driver and returns today's updated total.
func RecordClockEvent(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	var input clockEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Type != models.ClockIn && input.Type != models.ClockOut {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be clock_in or clock_out"})
		return
	}

	ts := time.Now()
	if input.Timestamp != nil {
		ts = *input.Timestamp
	}

	total, err := ledger.RecordClockEvent(c.Request.Context(), driver.ID, input.Type, ts)
	if err != nil {
		logrus.WithError(err).WithField("driver_id", driver.ID).Error("Failed to record clock event.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record clock event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_worked_seconds": total,
	})
}

// TodayWorkedTime returns the running worked-seconds total for today. A
// driver with no record yet gets 0, never an error.
func TodayWorkedTime(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	total, err := ledger.TodayWorkedSeconds(c.Request.Context(), driver.ID)
	if err != nil {
		logrus.WithError(err).WithField("driver_id", driver.ID).Error("Failed to fetch today's worked time.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch worked time"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"worked_seconds": total})
}

// AttendanceByDate returns the full record for one day. Absence is a clean
// 200 with a null record so the client can tell "no data" from "error".
func AttendanceByDate(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	date := c.Param("date")
	if _, err := time.Parse(attendance.DateFormat, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted yyyy-MM-dd"})
		return
	}

	rec, err := ledger.Record(c.Request.Context(), driver.ID, date)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"driver_id": driver.ID,
			"date":      date,
		}).Error("Failed to fetch attendance record.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch attendance record"})
		return
	}

	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"record": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec, "clocked_in": rec.ClockedIn()})
}
