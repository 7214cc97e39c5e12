package llmclient

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/internal/config"
)

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// OpenAIClient talks to the OpenAI chat-completions API or any endpoint
// speaking the same protocol.
type OpenAIClient struct {
	chatHTTP
	endpoint string
	apiKey   string
	model    string
}

// NewOpenAIClient validates credentials and builds the client. A missing API
// key is a configuration error raised before any network call.
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai requires llm.api_key", ErrMissingCredentials)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIClient{
		chatHTTP: newChatHTTP("openai", cfg.Timeout, cfg.MaxElapsed, cfg.RequestsPerMinute,
			logger.Named("llm_client.openai")),
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		model:    model,
	}, nil
}

// Name implements schemas.ChatBackend.
func (c *OpenAIClient) Name() string { return "openai" }

// Complete implements schemas.ChatBackend.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}
	return c.post(ctx, c.endpoint, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}, payload)
}
