// README: Discovery trigger, stats, and last-report handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dnerve/internal/modules/discovery"
)

type DiscoveryHandler struct {
	discovery *discovery.Service
}

func NewDiscoveryHandler(svc *discovery.Service) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: svc}
}

type runDiscoveryReq struct {
	DaysBack int `json:"days_back"`
	MinTrips int `json:"min_trips"`
}

// Run triggers a discovery batch synchronously. An insufficient-data
// outcome is informational, not a failure code: the report comes back
// with 200 and success=false.
func (h *DiscoveryHandler) Run(c *gin.Context) {
	var req runDiscoveryReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	report, err := h.discovery.DiscoverRoutes(c.Request.Context(), req.DaysBack, req.MinTrips)
	if errors.Is(err, discovery.ErrAlreadyRunning) {
		writeError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "discovery run failed")
		return
	}
	writeJSON(c, http.StatusOK, report)
}

func (h *DiscoveryHandler) Stats(c *gin.Context) {
	stats, err := h.discovery.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}

func (h *DiscoveryHandler) LastReport(c *gin.Context) {
	report, ok, err := h.discovery.LastReport(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !ok {
		writeJSON(c, http.StatusOK, map[string]any{"available": false})
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"available": true, "report": report})
}
