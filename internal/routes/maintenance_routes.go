package routes

import (
	"fleetly/internal/controllers"
	"fleetly/internal/middleware"

	"github.com/gin-gonic/gin"
)

func MaintenanceRoutes(r *gin.Engine) {
	maintenance := r.Group("/maintenance")
	maintenance.Use(middleware.RequireAuthWithRole("maintenance"))
	{
		maintenance.GET("/vehicles", controllers.ListVehicles)
		maintenance.PATCH("/vehicles/:id/service", controllers.SetServiceStatus)
	}
}
