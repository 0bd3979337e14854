package routes

import (
	"fleetly/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine) {
	ws := r.Group("/ws")
	{
		// Token passed as a query parameter; websocket clients cannot set headers.
		ws.GET("/trips", controllers.HandleTripFeedWebSocket)
	}
}
