package llmoracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryChatJSON_SucceedsFirstTry(t *testing.T) {
	calls := 0
	complete := func(ctx context.Context, req ChatRequest) (string, error) {
		calls++
		return `{"ok": true}`, nil
	}

	obj, err := retryChatJSON(context.Background(), "fake", ChatRequest{}, complete)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, true, obj["ok"])
}

func TestRetryChatJSON_TolerantOfMarkdownFence(t *testing.T) {
	complete := func(ctx context.Context, req ChatRequest) (string, error) {
		return "```json\n{\"ok\": true}\n```", nil
	}
	obj, err := retryChatJSON(context.Background(), "fake", ChatRequest{}, complete)
	require.NoError(t, err)
	assert.Equal(t, true, obj["ok"])
}

func TestRetryChatJSON_ExhaustsBudgetOnPersistentGarbage(t *testing.T) {
	calls := 0
	complete := func(ctx context.Context, req ChatRequest) (string, error) {
		calls++
		return "not json", nil
	}

	_, err := retryChatJSON(context.Background(), "fake", ChatRequest{}, complete)
	require.Error(t, err)
	assert.Equal(t, minAttempts, calls)

	var fmtErr *LLMFormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, minAttempts, fmtErr.Attempts)
}

func TestRetryChatJSON_StrengthensInstructionOnRetry(t *testing.T) {
	var seenOnSecondCall []Message
	calls := 0
	complete := func(ctx context.Context, req ChatRequest) (string, error) {
		calls++
		if calls == 2 {
			seenOnSecondCall = req.Messages
		}
		if calls < 2 {
			return "garbage", nil
		}
		return `{"ok": true}`, nil
	}

	req := ChatRequest{Messages: []Message{{Role: RoleSystem, Content: "be terse"}}}
	_, err := retryChatJSON(context.Background(), "fake", req, complete)
	require.NoError(t, err)
	require.NotEmpty(t, seenOnSecondCall)
	assert.Contains(t, seenOnSecondCall[0].Content, "be terse")
	assert.Contains(t, seenOnSecondCall[0].Content, "valid JSON object")
}

func TestRetryChatJSON_TransportErrorBecomesUnavailable(t *testing.T) {
	complete := func(ctx context.Context, req ChatRequest) (string, error) {
		return "", errors.New("connection reset")
	}
	_, err := retryChatJSON(context.Background(), "fake", ChatRequest{}, complete)
	var unavailable *LLMUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "fake", unavailable.Backend)
}

func TestExtractJSONObject(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                        `{"a":1}`,
		"```json\n{\"a\":1}\n```":        `{"a":1}`,
		"Here you go: {\"a\":1} thanks!": `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, extractJSONObject(in))
	}
}
