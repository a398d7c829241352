package reasoning

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"committee-trade-bot-go/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEngine executes prompts against an OpenAI-compatible chat completion
// endpoint and enforces the request schema on the reply.
type OpenAIEngine struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ Engine = (*OpenAIEngine)(nil)

// NewOpenAIEngine creates an engine from the OpenAI configuration.
func NewOpenAIEngine(cfg *config.OpenAI, logger *zap.Logger) *OpenAIEngine {
	clientCfg := openai.DefaultConfig(cfg.ApiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.TimeoutSeconds > 0 {
		// ClientConfig.HTTPClient is an HTTPDoer, so the timeout has to be
		// set on a client of our own.
		clientCfg.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}

	return &OpenAIEngine{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}
}

// Execute sends the prompts, pulls the first JSON object out of the reply,
// validates it against req.Schema and decodes it into out.
func (e *OpenAIEngine) Execute(ctx context.Context, req Request, out any) error {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.5,
	})
	if err != nil {
		return fmt.Errorf("chat completion for %s failed: %w", req.AgentName, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion for %s returned no choices", req.AgentName)
	}

	content := resp.Choices[0].Message.Content
	raw, ok := extractJSONObject(content)
	if !ok {
		return fmt.Errorf("no JSON object in %s reply", req.AgentName)
	}

	if err := decodeValidated([]byte(raw), req.Schema, out); err != nil {
		e.logger.Warn("Model reply rejected",
			zap.String("agent", req.AgentName),
			zap.Error(err),
		)
		return err
	}

	e.logger.Debug("Model reply accepted", zap.String("agent", req.AgentName))
	return nil
}
