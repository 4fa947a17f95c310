// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dnerve/internal/modules/discovery"
	"dnerve/internal/modules/matching"
	"dnerve/internal/modules/route"
	"dnerve/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrBadRequest), errors.Is(err, route.ErrBadRequest), errors.Is(err, matching.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrNotFound), errors.Is(err, route.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, discovery.ErrAlreadyRunning):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
