package routes

import (
	"fleetly/internal/controllers"
	"fleetly/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/driver")
	driver.Use(middleware.RequireAuthWithRole("driver"))
	{
		driver.POST("/attendance/clock", controllers.RecordClockEvent)
		driver.GET("/attendance/today", controllers.TodayWorkedTime)
		driver.GET("/attendance/day/:date", controllers.AttendanceByDate)

		driver.GET("/trips", controllers.ListMyTrips)
		driver.POST("/trips/:id/start", controllers.StartTrip)
		driver.POST("/trips/:id/complete", controllers.CompleteTrip)
		driver.POST("/trips/:id/delay", controllers.ReportTripDelay)
		driver.GET("/trips/:id/corridor", controllers.TripCorridor)

		driver.GET("/vehicle", controllers.GetMyVehicle)
	}
}
