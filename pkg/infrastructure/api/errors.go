package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/domain/timeline"
)

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, planning.ErrInvalidInput),
		errors.Is(err, timeline.ErrInvalidRange),
		errors.Is(err, timeline.ErrUnknownGranularity):
		return http.StatusBadRequest
	case errors.Is(err, planning.ErrTaskNotFound),
		errors.Is(err, planning.ErrProjectNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
