package main

import (
	"log"
	"net/http"
	"os"

	"fleetly/internal/config"
	"fleetly/internal/controllers"
	"fleetly/internal/logger"
	"fleetly/internal/middleware"
	"fleetly/internal/routes"
	"fleetly/internal/routing"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Wire the routing collaborator when configured; corridor requests fail
	// soft without it.
	if apiKey := os.Getenv("ORS_API_KEY"); apiKey != "" {
		provider, err := routing.NewORSProvider(os.Getenv("ORS_BASE_URL"), apiKey)
		if err != nil {
			log.Fatalf("routing provider: %v", err)
		}
		controllers.SetRouteProvider(provider)
	} else {
		log.Println("ORS_API_KEY not set – trip corridors disabled")
	}

	// Setup Gin router (recovery + request logging installed inside)
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Println("🚀 Server running at :8080")
	log.Fatal(http.ListenAndServe("0.0.0.0:8080", handler))
}
