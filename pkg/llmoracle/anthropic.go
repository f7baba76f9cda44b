package llmoracle

import (
	"context"
	"fmt"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicOracle implements Oracle against the Anthropic Messages API.
type AnthropicOracle struct {
	sdk       anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicOracle builds an Oracle backed by anthropic-sdk-go.
func NewAnthropicOracle(apiKey, model string, maxTokens int) *AnthropicOracle {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicOracle{
		sdk:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (o *AnthropicOracle) ChatJSON(ctx context.Context, req ChatRequest) (map[string]any, error) {
	return retryChatJSON(ctx, "anthropic", req, o.complete)
}

func (o *AnthropicOracle) ChatText(ctx context.Context, req ChatRequest) (string, error) {
	text, err := o.complete(ctx, req)
	if err != nil {
		return "", &LLMUnavailableError{Backend: "anthropic", Err: err}
	}
	return text, nil
}

func (o *AnthropicOracle) complete(ctx context.Context, req ChatRequest) (string, error) {
	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := o.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	resp, err := o.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(o.model),
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: messages.new: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
