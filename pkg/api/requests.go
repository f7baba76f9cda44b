package api

// CreateProjectRequest is the HTTP request body for POST /api/v1/projects.
type CreateProjectRequest struct {
	ResearchQuestion string   `json:"research_question" binding:"required"`
	VoiceAgentID     string   `json:"voice_agent_id" binding:"required"`
	SeedAngles       []string `json:"seed_angles,omitempty"`
}
