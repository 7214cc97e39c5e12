package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// chatMessage mirrors the chat-completion wire format shared by the HTTP
// providers.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatHTTP is the transport core shared by the OpenAI-compatible and Azure
// clients: one POST with retries on transient statuses, a request timeout and
// an optional outbound rate limit.
type chatHTTP struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
	logger     *zap.Logger
}

func newChatHTTP(name string, timeout, maxElapsed time.Duration, requestsPerMinute int, logger *zap.Logger) chatHTTP {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 1)
	}
	if maxElapsed <= 0 {
		maxElapsed = 2 * time.Minute
	}
	return chatHTTP{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		maxElapsed: maxElapsed,
		logger:     logger,
	}
}

// post sends the payload and returns choices[0].message.content. All failures
// come back as *TransportError so the gateway can apply its degrade contract.
func (c *chatHTTP) post(ctx context.Context, url string, setAuth func(*http.Request), payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &TransportError{Backend: c.name, Err: fmt.Errorf("failed to marshal request payload: %w", err)}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &TransportError{Backend: c.name, Err: err}
		}
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxElapsed
	b.MaxInterval = 30 * time.Second

	var content string
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(&TransportError{Backend: c.name, Err: err})
		}
		httpReq.Header.Set("Content-Type", "application/json")
		setAuth(httpReq)

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			c.logger.Warn("Network error during LLM request, retrying",
				zap.String("backend", c.name), zap.Error(err))
			return &TransportError{Backend: c.name, Err: err}
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Backend: c.name, Err: fmt.Errorf("failed to read response body: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return c.handleAPIError(resp.StatusCode, respBody)
		}

		var parsed chatResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return backoff.Permanent(&TransportError{
				Backend: c.name,
				Body:    string(respBody),
				Err:     fmt.Errorf("failed to decode response envelope: %w", err),
			})
		}
		if len(parsed.Choices) == 0 {
			return backoff.Permanent(&TransportError{
				Backend: c.name,
				Body:    string(respBody),
				Err:     fmt.Errorf("backend returned no choices"),
			})
		}

		c.logger.Debug("LLM request complete",
			zap.String("backend", c.name),
			zap.Duration("duration", time.Since(start)))
		content = parsed.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return content, nil
}

func (c *chatHTTP) handleAPIError(statusCode int, body []byte) error {
	c.logger.Error("LLM backend returned error status",
		zap.String("backend", c.name),
		zap.Int("status", statusCode),
		zap.String("response", string(body)))

	terr := &TransportError{Backend: c.name, Status: statusCode, Body: string(body)}
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return terr // transient, retry
	default:
		return backoff.Permanent(terr)
	}
}
