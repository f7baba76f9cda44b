package llmoracle

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// OpenAIOracle implements Oracle against the OpenAI Chat Completions API.
type OpenAIOracle struct {
	sdk       openai.Client
	model     string
	maxTokens int
}

// NewOpenAIOracle builds an Oracle backed by openai-go.
func NewOpenAIOracle(apiKey, model string, maxTokens int) *OpenAIOracle {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &OpenAIOracle{
		sdk:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (o *OpenAIOracle) ChatJSON(ctx context.Context, req ChatRequest) (map[string]any, error) {
	return retryChatJSON(ctx, "openai", req, o.complete)
}

func (o *OpenAIOracle) ChatText(ctx context.Context, req ChatRequest) (string, error) {
	text, err := o.complete(ctx, req)
	if err != nil {
		return "", &LLMUnavailableError{Backend: "openai", Err: err}
	}
	return text, nil
}

func (o *OpenAIOracle) complete(ctx context.Context, req ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		}
	}

	maxTokens := o.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.model),
		Messages:    msgs,
		Temperature: param.NewOpt(req.Temperature),
		MaxTokens:   param.NewOpt(int64(maxTokens)),
	}
	if req.ResponseFormat == FormatJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat.completions.new: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
