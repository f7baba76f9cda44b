package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shipaleks/eidetic/pkg/report"
)

// getReportHandler handles GET /api/v1/projects/:id/report.
func (s *Server) getReportHandler(c *gin.Context) {
	snap, err := s.store.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	text, err := s.synth.GenerateReport(c.Request.Context(), report.View(snap))
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}
