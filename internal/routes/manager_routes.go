package routes

import (
	"fleetly/internal/controllers"
	"fleetly/internal/middleware"

	"github.com/gin-gonic/gin"
)

func ManagerRoutes(r *gin.Engine) {
	manager := r.Group("/manager")
	manager.Use(middleware.RequireAuthWithRole("manager"))
	{
		manager.POST("/trips", controllers.CreateTrip)
		manager.GET("/trips", controllers.ListFleetTrips)
		manager.POST("/trips/:id/cancel", controllers.CancelTrip)

		manager.POST("/vehicles", controllers.CreateVehicle)
		manager.GET("/vehicles", controllers.ListVehicles)
		manager.PATCH("/vehicles/:id/driver", controllers.AssignDriver)
	}
}
