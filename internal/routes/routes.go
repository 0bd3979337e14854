package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Middleware must be installed before any route is registered.
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	DriverRoutes(r)
	ManagerRoutes(r)
	MaintenanceRoutes(r)
	WebSocketRoutes(r)

	return r
}
