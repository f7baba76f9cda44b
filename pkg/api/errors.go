package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shipaleks/eidetic/pkg/adapter"
	"github.com/shipaleks/eidetic/pkg/pipeline"
	"github.com/shipaleks/eidetic/pkg/store"
)

// writeError maps a domain error to the HTTP status spec.md §7 implies and
// writes the JSON error envelope.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrUnknownProject), errors.Is(err, adapter.ErrUnknownProject), errors.Is(err, store.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, adapter.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateConversation):
		c.JSON(http.StatusOK, gin.H{"status": "duplicate, accepted"})
	case errors.Is(err, pipeline.ErrAnalysisFailed):
		c.JSON(http.StatusAccepted, gin.H{"status": "analysis_failed", "detail": err.Error()})
	default:
		slog.Error("api: unexpected error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
