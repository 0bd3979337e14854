package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleetly/internal/config"
	"fleetly/internal/models"
)

type createVehicleInput struct {
	PlateNo      string  `json:"plate_no" binding:"required"`
	Registration string  `json:"registration"`
	VehicleType  string  `json:"vehicle_type" binding:"required"`
	Capacity     int     `json:"capacity"`
	LoadLimitKg  float64 `json:"load_limit_kg"`
	DriverID     uint    `json:"driver_id"`
}

type serviceStatusPayload struct {
	InService *bool `json:"in_service" binding:"required"`
}

// CreateVehicle registers a vehicle in the fleet (manager role).
func CreateVehicle(c *gin.Context) {
	var input createVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := models.Vehicle{
		PlateNo:      input.PlateNo,
		Registration: input.Registration,
		VehicleType:  input.VehicleType,
		Capacity:     input.Capacity,
		LoadLimitKg:  input.LoadLimitKg,
		DriverID:     input.DriverID,
		InService:    true,
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		logrus.WithError(err).Error("Failed to create vehicle.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vehicle"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// ListVehicles returns the whole fleet (manager role).
func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.Order("plate_no asc").Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vehicles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

// AssignDriver links a driver to a vehicle (manager role), keeping both
// sides of the association in step.
func AssignDriver(c *gin.Context) {
	vehicle, ok := vehicleByParam(c)
	if !ok {
		return
	}

	var body struct {
		DriverID uint `json:"driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, body.DriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "driver does not exist"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		vehicle.DriverID = driver.ID
		if err := tx.Save(vehicle).Error; err != nil {
			return err
		}
		driver.VehicleID = vehicle.ID
		return tx.Save(&driver).Error
	})
	if err != nil {
		logrus.WithError(err).WithField("vehicle_id", vehicle.ID).Error("Failed to assign driver to vehicle.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign driver"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// SetServiceStatus flips a vehicle's in_service flag (maintenance role).
func SetServiceStatus(c *gin.Context) {
	vehicle, ok := vehicleByParam(c)
	if !ok {
		return
	}

	var payload serviceStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body format: " + err.Error()})
		return
	}

	vehicle.InService = *payload.InService
	if err := config.DB.Save(vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update service status"})
		return
	}

	logrus.WithFields(logrus.Fields{
		"vehicle_id": vehicle.ID,
		"in_service": vehicle.InService,
	}).Info("Vehicle service status updated.")

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// GetMyVehicle fetches the vehicle assigned to the authenticated driver.
func GetMyVehicle(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Where("driver_id = ?", driver.ID).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no vehicle assigned"})
			return
		}
		logrus.WithError(err).Error("Error fetching vehicle for driver.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func vehicleByParam(c *gin.Context) (*models.Vehicle, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return nil, false
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return nil, false
	}
	return &vehicle, true
}
