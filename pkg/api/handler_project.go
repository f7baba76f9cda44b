package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shipaleks/eidetic/pkg/models"
	"github.com/shipaleks/eidetic/pkg/report"
)

// createProjectHandler handles POST /api/v1/projects.
func (s *Server) createProjectHandler(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := s.pipeline.CreateProject(c.Request.Context(), req.ResearchQuestion, req.VoiceAgentID, req.SeedAngles)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// getProjectHandler handles GET /api/v1/projects/:id.
func (s *Server) getProjectHandler(c *gin.Context) {
	snap, err := s.store.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.Summary(snap))
}

// listProjectsHandler handles GET /api/v1/projects.
func (s *Server) listProjectsHandler(c *gin.Context) {
	ids, err := s.store.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	summaries := make([]models.ProjectSummary, 0, len(ids))
	for _, id := range ids {
		snap, err := s.store.Load(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		summaries = append(summaries, report.Summary(snap))
	}
	c.JSON(http.StatusOK, summaries)
}

// deleteProjectHandler handles DELETE /api/v1/projects/:id.
func (s *Server) deleteProjectHandler(c *gin.Context) {
	if err := s.store.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
