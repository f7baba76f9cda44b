package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shipaleks/eidetic/pkg/adapter"
)

// webhookHandler handles POST /api/v1/webhook/transcript — the External
// Adapter's receive_transcript callback (spec.md §4.8). The voice runtime
// posts one completed interview transcript per call, identified by the
// voice agent's id rather than Eidetic's project id. Validation happens
// synchronously; the pipeline run it triggers does not (spec.md §6: accept,
// validate, enqueue, return immediately).
func (s *Server) webhookHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	payload, err := adapter.ReceiveTranscript(body)
	if err != nil {
		writeError(c, err)
		return
	}

	s.pipeline.Dispatch(payload.AgentID, payload.ConversationID, payload.Transcript, payload.Language)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
