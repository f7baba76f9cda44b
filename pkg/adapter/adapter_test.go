package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipaleks/eidetic/pkg/config"
)

func TestPublishScript_SucceedsOnFirstAttempt(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := New(config.AdapterConfig{VoiceRuntimeBaseURL: srv.URL, PublishTimeout: time.Second, PublishMaxRetries: 3})
	err := a.PublishScript(context.Background(), "agent-1", "you are an interviewer")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/agents/agent-1/prompt", gotPath)
}

func TestPublishScript_RetriesThenFailsWrapsErrPublishFailed(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(config.AdapterConfig{VoiceRuntimeBaseURL: srv.URL, PublishTimeout: time.Second, PublishMaxRetries: 2})
	a.retryWait = time.Millisecond
	err := a.PublishScript(context.Background(), "agent-1", "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPublishFailed))
	assert.Equal(t, 2, attempts)
}

func TestReceiveTranscript_DecodesValidPayload(t *testing.T) {
	body := []byte(`{"conversation_id":"conv-1","agent_id":"agent-1","transcript":"hello","language":"en"}`)
	payload, err := ReceiveTranscript(body)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", payload.ConversationID)
	assert.Equal(t, "agent-1", payload.AgentID)
	assert.Equal(t, "hello", payload.Transcript)
	assert.Equal(t, "en", payload.Language)
}

func TestReceiveTranscript_RejectsMissingFields(t *testing.T) {
	body := []byte(`{"agent_id":"agent-1","transcript":"hello"}`)
	_, err := ReceiveTranscript(body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPayload))
}
