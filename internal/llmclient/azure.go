package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/internal/config"
)

const defaultAzureAPIVersion = "2023-07-01-preview"

// AzureClient talks to an Azure OpenAI deployment. It differs from the OpenAI
// client only in URL construction (deployment-scoped, pinned API version) and
// the api-key auth header; the deployment replaces the model field.
type AzureClient struct {
	chatHTTP
	url    string
	apiKey string
}

// NewAzureClient validates the Azure credential triple and builds the client.
func NewAzureClient(cfg config.LLMConfig, logger *zap.Logger) (*AzureClient, error) {
	deployment := cfg.Deployment
	if deployment == "" {
		deployment = cfg.Model
	}
	if cfg.APIKey == "" || cfg.Endpoint == "" || deployment == "" {
		return nil, fmt.Errorf("%w: azure requires llm.api_key, llm.endpoint and llm.deployment", ErrMissingCredentials)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAzureAPIVersion
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(cfg.Endpoint, "/"), deployment, apiVersion)

	return &AzureClient{
		chatHTTP: newChatHTTP("azure", cfg.Timeout, cfg.MaxElapsed, cfg.RequestsPerMinute,
			logger.Named("llm_client.azure")),
		url:    url,
		apiKey: cfg.APIKey,
	}, nil
}

// Name implements schemas.ChatBackend.
func (c *AzureClient) Name() string { return "azure" }

// Complete implements schemas.ChatBackend.
func (c *AzureClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}
	return c.post(ctx, c.url, func(req *http.Request) {
		req.Header.Set("api-key", c.apiKey)
	}, payload)
}
