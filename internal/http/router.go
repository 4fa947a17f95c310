// README: HTTP router registration.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"dnerve/internal/http/handlers"
	"dnerve/internal/http/middleware"
	"dnerve/internal/modules/discovery"
	"dnerve/internal/modules/matching"
	"dnerve/internal/modules/route"
	"dnerve/internal/modules/trip"
)

func NewRouter(
	tripService *trip.Service,
	routeService *route.Service,
	matchingService *matching.Service,
	discoveryService *discovery.Service,
	hubs *discovery.HubRegistry,
) nethttp.Handler {
	router := gin.New()
	router.Use(middleware.Logging(), middleware.Recovery())

	tripHandler := handlers.NewTripHandler(tripService)
	router.POST("/api/trips", tripHandler.Submit)
	router.GET("/api/trips/:id", tripHandler.Get)
	router.GET("/api/drivers/:id/trips", tripHandler.ListByDriver)

	routeHandler := handlers.NewRouteHandler(routeService, matchingService, hubs)
	router.GET("/api/routes", routeHandler.List)
	router.GET("/api/routes/:id", routeHandler.Get)
	router.POST("/api/routes/search", routeHandler.Search)
	router.POST("/api/routes/match", routeHandler.Match)
	router.GET("/api/commuter/nearby-routes", routeHandler.Nearby)
	router.GET("/api/commuter/route-eta", routeHandler.ETA)
	router.GET("/api/matching/nearest-hub", routeHandler.NearestRouteOrigin)
	router.GET("/api/hubs/nearest", routeHandler.NearestHub)

	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService)
	router.POST("/api/discovery/run", discoveryHandler.Run)
	router.GET("/api/discovery/stats", discoveryHandler.Stats)
	router.GET("/api/discovery/report", discoveryHandler.LastReport)

	router.GET("/health", func(c *gin.Context) {
		c.String(nethttp.StatusOK, "OK")
	})

	return router
}
