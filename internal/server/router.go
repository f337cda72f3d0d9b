// Package server exposes the ledger's boundary calls over HTTP: a JSON
// REST surface plus a Server-Sent Events relay of the event stream.
// Anyone may create or join a pool; there is no authentication, and member
// identities are accepted as presented.
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/chitpool/internal/events"
	"github.com/mmynk/chitpool/internal/ledger"
	"github.com/mmynk/chitpool/internal/middleware"
)

// Config carries the router's collaborators.
type Config struct {
	Ledger *ledger.Ledger
	Bus    *events.Bus

	// CORSOrigins lists the allowed browser origins. A single "*" (the
	// default when empty) allows all origins.
	CORSOrigins []string
}

// NewRouter builds the gin engine with the middleware chain and all routes.
func NewRouter(cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	pools := NewPoolHandler(cfg.Ledger)
	stream := NewEventsHandler(cfg.Bus)

	router.GET("/healthz", pools.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/pools", pools.CreatePool)
		api.GET("/pools", pools.ListPools)
		api.GET("/pools/:id", pools.GetPool)
		api.POST("/pools/:id/join", pools.JoinPool)
		api.GET("/pools/:id/participants", pools.GetParticipants)
		api.GET("/pools/:id/schedule", pools.GetSchedule)
		api.GET("/events", stream.Stream)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Content-Type", middleware.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
