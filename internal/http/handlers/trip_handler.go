// README: Trip submission and read handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dnerve/internal/modules/trip"
	"dnerve/internal/types"
)

type TripHandler struct {
	trips *trip.Service
}

func NewTripHandler(svc *trip.Service) *TripHandler {
	return &TripHandler{trips: svc}
}

type submitTripReq struct {
	DriverID  string        `json:"driver_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	GPSPoints []trip.GPSFix `json:"gps_points"`
}

func (h *TripHandler) Submit(c *gin.Context) {
	var req submitTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DriverID == "" || len(req.GPSPoints) == 0 {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	id, err := h.trips.Submit(c.Request.Context(), trip.SubmitCommand{
		DriverID:  types.ID(req.DriverID),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Fixes:     req.GPSPoints,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"trip_id": id, "points": len(req.GPSPoints)})
}

func (h *TripHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing trip id")
		return
	}
	t, err := h.trips.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"trip_id":          t.ID,
		"driver_id":        t.DriverID,
		"start_time":       t.StartTime,
		"end_time":         t.EndTime,
		"duration_minutes": t.DurationMinutes,
		"point_count":      t.PointCount,
		"created_at":       t.CreatedAt,
	})
}

func (h *TripHandler) ListByDriver(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing driver id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	trips, err := h.trips.ListByDriver(c.Request.Context(), types.ID(id), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]map[string]any, 0, len(trips))
	for _, t := range trips {
		out = append(out, map[string]any{
			"trip_id":          t.ID,
			"start_time":       t.StartTime,
			"end_time":         t.EndTime,
			"duration_minutes": t.DurationMinutes,
			"point_count":      t.PointCount,
		})
	}
	writeJSON(c, http.StatusOK, map[string]any{"trips": out, "total": len(out)})
}
