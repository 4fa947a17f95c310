// README: Route listing, proximity search, matching, and ETA handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dnerve/internal/modules/discovery"
	"dnerve/internal/modules/matching"
	"dnerve/internal/modules/route"
	"dnerve/internal/types"
)

type RouteHandler struct {
	routes  *route.Service
	matcher *matching.Service
	hubs    *discovery.HubRegistry
}

func NewRouteHandler(routes *route.Service, matcher *matching.Service, hubs *discovery.HubRegistry) *RouteHandler {
	return &RouteHandler{routes: routes, matcher: matcher, hubs: hubs}
}

func (h *RouteHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	activeOnly := c.DefaultQuery("active_only", "true") != "false"

	routes, total, err := h.routes.List(c.Request.Context(), activeOnly, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]map[string]any, 0, len(routes))
	for i := range routes {
		out = append(out, routeJSON(&routes[i]))
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"routes": out,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *RouteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing route id")
		return
	}
	r, err := h.routes.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, routeJSON(r))
}

type searchRoutesReq struct {
	OriginLat float64 `json:"origin_lat"`
	OriginLon float64 `json:"origin_lon"`
	DestLat   float64 `json:"dest_lat"`
	DestLon   float64 `json:"dest_lon"`
	RadiusKm  float64 `json:"radius_km"`
}

func (h *RouteHandler) Search(c *gin.Context) {
	var req searchRoutesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RadiusKm <= 0 {
		req.RadiusKm = 2.0
	}
	results, err := h.routes.Search(c.Request.Context(), route.SearchQuery{
		Origin:   types.Point{Lat: req.OriginLat, Lon: req.OriginLon},
		Dest:     types.Point{Lat: req.DestLat, Lon: req.DestLon},
		RadiusKm: req.RadiusKm,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]map[string]any, 0, len(results))
	for i := range results {
		m := routeJSON(&results[i].Route)
		m["origin_distance_km"] = results[i].OriginDistanceKm
		m["dest_distance_km"] = results[i].DestDistanceKm
		out = append(out, m)
	}
	writeJSON(c, http.StatusOK, map[string]any{"routes": out, "total": len(out)})
}

func (h *RouteHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "lat and lon are required")
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "2.0"), 64)
	if err != nil || radius <= 0 {
		radius = 2.0
	}
	nearby, err := h.routes.Nearby(c.Request.Context(), lat, lon, radius)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]map[string]any, 0, len(nearby))
	for i := range nearby {
		m := routeJSON(&nearby[i].Route)
		m["distance_km"] = nearby[i].DistanceKm
		out = append(out, m)
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"routes":    out,
		"total":     len(out),
		"location":  map[string]float64{"lat": lat, "lon": lon},
		"radius_km": radius,
	})
}

func (h *RouteHandler) ETA(c *gin.Context) {
	routeID := c.Query("route_id")
	lat, err1 := strconv.ParseFloat(c.Query("origin_lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("origin_lon"), 64)
	if routeID == "" || err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "route_id, origin_lat and origin_lon are required")
		return
	}
	eta, err := h.routes.EstimateETA(c.Request.Context(), types.ID(routeID), types.Point{Lat: lat, Lon: lon})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"route_id":          eta.RouteID,
		"route_name":        eta.RouteName,
		"walk_distance_km":  eta.WalkDistanceKm,
		"walk_time_minutes": eta.WalkTimeMinutes,
		"ride_minutes":      eta.RideMinutes,
		"total_eta_minutes": eta.TotalMinutes,
	})
}

type matchRouteReq struct {
	OriginText string `json:"origin_text"`
	DestText   string `json:"dest_text"`
}

func (h *RouteHandler) Match(c *gin.Context) {
	var req matchRouteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	result, err := h.matcher.MatchRoute(c.Request.Context(), req.OriginText, req.DestText)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

// NearestHub answers against the static hub registry; the matcher's
// route-origin variant is NearestRouteOrigin.
func (h *RouteHandler) NearestHub(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "lat and lon are required")
		return
	}
	maxKm, err := strconv.ParseFloat(c.DefaultQuery("max_distance_km", "2.0"), 64)
	if err != nil || maxKm <= 0 {
		maxKm = discovery.DefaultSnapKm
	}
	hub, ok := h.hubs.Nearest(lat, lon, maxKm)
	if !ok {
		writeJSON(c, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"found": true,
		"name":  hub.Name,
		"lat":   hub.Pos.Lat,
		"lon":   hub.Pos.Lon,
	})
}

func (h *RouteHandler) NearestRouteOrigin(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "lat and lon are required")
		return
	}
	maxKm, err := strconv.ParseFloat(c.DefaultQuery("max_distance_km", "5.0"), 64)
	if err != nil || maxKm <= 0 {
		maxKm = 5.0
	}
	hub, found, err := h.matcher.FindNearestHub(c.Request.Context(), lat, lon, maxKm)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !found {
		writeJSON(c, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"found":       true,
		"name":        hub.Name,
		"lat":         hub.Pos.Lat,
		"lon":         hub.Pos.Lon,
		"distance_km": hub.DistanceKm,
	})
}

func routeJSON(r *route.Route) map[string]any {
	return map[string]any{
		"route_id":             r.ID,
		"name":                 r.Name,
		"origin":               r.Origin,
		"destination":          r.Destination,
		"origin_lat":           r.OriginPos.Lat,
		"origin_lon":           r.OriginPos.Lon,
		"dest_lat":             r.DestPos.Lat,
		"dest_lon":             r.DestPos.Lon,
		"distance_km":          r.DistanceKm,
		"avg_duration_minutes": r.AvgDurationMinutes,
		"fare_egp":             r.FareEGP,
		"trip_count":           r.TripCount,
		"is_active":            r.Active,
	}
}
