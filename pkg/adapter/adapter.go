// Package adapter is the External Adapter (spec.md §4.8): it publishes a
// compiled interview script as the active system prompt on the external
// voice runtime, and decodes the webhook payloads that runtime sends back
// when an interview transcript is ready.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shipaleks/eidetic/pkg/config"
)

// Adapter talks HTTP to the voice runtime: one base URL, one agent-scoped
// publish endpoint per call.
type Adapter struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	retryWait   time.Duration
	logger      *slog.Logger
}

// New builds an Adapter configured per cfg.
func New(cfg config.AdapterConfig) *Adapter {
	return &Adapter{
		httpClient: &http.Client{Timeout: cfg.PublishTimeout},
		baseURL:    cfg.VoiceRuntimeBaseURL,
		maxRetries: cfg.PublishMaxRetries,
		retryWait:  500 * time.Millisecond,
		logger:     slog.Default(),
	}
}

// publishRequest is the body sent to the voice runtime; promptText is the
// verbatim output of pkg/designer's build_interviewer_prompt equivalent.
type publishRequest struct {
	SystemPrompt string `json:"system_prompt"`
}

// PublishScript replaces agentID's active system prompt with promptText.
// It makes up to maxRetries attempts in total (at least one), waiting
// retryWait × attempt number between them; persistent failure returns an
// error wrapping ErrPublishFailed, per spec.md §4.8 and §7's PublishError
// policy.
func (a *Adapter) PublishScript(ctx context.Context, agentID, promptText string) error {
	body, err := json.Marshal(publishRequest{SystemPrompt: promptText})
	if err != nil {
		return fmt.Errorf("adapter: encode publish request: %w", err)
	}

	url := fmt.Sprintf("%s/agents/%s/prompt", a.baseURL, agentID)

	var lastErr error
	attempts := a.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := a.tryPublish(ctx, url, body); err != nil {
			lastErr = err
			a.logger.Warn("adapter: publish_script attempt failed", "agent_id", agentID, "attempt", attempt, "error", err)
			if attempt < attempts {
				select {
				case <-ctx.Done():
					return fmt.Errorf("%w: %v", ErrPublishFailed, ctx.Err())
				case <-time.After(a.retryWait * time.Duration(attempt)):
				}
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPublishFailed, lastErr)
}

func (a *Adapter) tryPublish(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("voice runtime returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// TranscriptPayload is the decoded shape of an inbound webhook delivery
// (spec.md §6): a conversation id, the agent id owning it, the transcript
// body, and an optional detected language.
type TranscriptPayload struct {
	ConversationID string
	AgentID        string
	Transcript     string
	Language       string // empty if undetected
}

// webhookBody is the raw wire shape the voice runtime posts.
type webhookBody struct {
	ConversationID string  `json:"conversation_id"`
	AgentID        string  `json:"agent_id"`
	Transcript     string  `json:"transcript"`
	Language       *string `json:"language,omitempty"`
}

// ReceiveTranscript validates and decodes a webhook body. It performs no
// project lookup — that is the Pipeline's job, since only it knows the
// agent_id → project_id mapping.
func ReceiveTranscript(raw []byte) (TranscriptPayload, error) {
	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return TranscriptPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if body.ConversationID == "" {
		return TranscriptPayload{}, fmt.Errorf("%w: missing conversation_id", ErrInvalidPayload)
	}
	if body.AgentID == "" {
		return TranscriptPayload{}, fmt.Errorf("%w: missing agent_id", ErrInvalidPayload)
	}
	if body.Transcript == "" {
		return TranscriptPayload{}, fmt.Errorf("%w: missing transcript", ErrInvalidPayload)
	}

	payload := TranscriptPayload{
		ConversationID: body.ConversationID,
		AgentID:        body.AgentID,
		Transcript:     body.Transcript,
	}
	if body.Language != nil {
		payload.Language = *body.Language
	}
	return payload, nil
}
