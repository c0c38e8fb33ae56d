package model

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/codeshield-io/codeshield/pkg/shared/config"
	"github.com/codeshield-io/codeshield/pkg/shared/errors"
	"github.com/codeshield-io/codeshield/pkg/shared/httpclient"
)

// Message is one chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the body posted to the gateway.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// CompletionResponse holds the part of the gateway answer CodeShield reads.
type CompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client talks to the hosted chat-completions gateway.
type Client struct {
	httpc    *resty.Client
	settings config.ResolvedModel
	logger   hclog.Logger
}

// New builds a gateway client. The API key is read from the environment
// variable named by the model configuration.
func New(logger hclog.Logger, cfg *config.Config) (*Client, error) {
	settings := config.ModelSettings(cfg)
	apiKey := strings.TrimSpace(os.Getenv(settings.APIKeyEnv))
	if apiKey == "" {
		return nil, &errors.ConfigError{Setting: settings.APIKeyEnv}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	httpc := httpclient.InitializeRestyClient(logger, cfg)
	httpc.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	httpc.SetHeader("Content-Type", "application/json")

	return &Client{
		httpc:    httpc,
		settings: settings,
		logger:   logger,
	}, nil
}

// Complete sends the snippet for review and returns the raw answer text.
func (c *Client) Complete(ctx context.Context, code, language string) (string, error) {
	body := CompletionRequest{
		Model: c.settings.Name,
		Messages: []Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: UserPrompt(language, code)},
		},
		Temperature: c.settings.Temperature,
	}

	var result CompletionResponse
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(c.settings.Endpoint)
	if err != nil {
		return "", errors.NewUpstreamError(0, "", err)
	}
	if !resp.IsSuccess() {
		c.logger.Error("model gateway returned an error", "status", resp.StatusCode(), "body", resp.String())
		return "", errors.NewUpstreamError(resp.StatusCode(), resp.String(), nil)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", errors.NewUpstreamError(resp.StatusCode(), resp.String(), errors.ErrEmptyAnalysis)
	}
	c.logger.Debug("model answer received", "status", resp.StatusCode(), "bytes", len(result.Choices[0].Message.Content))
	return result.Choices[0].Message.Content, nil
}

// Analyze sends the snippet for review and decodes the answer into a JSON object.
func (c *Client) Analyze(ctx context.Context, code, language string) (map[string]interface{}, error) {
	content, err := c.Complete(ctx, code, language)
	if err != nil {
		return nil, err
	}
	raw, err := ParseContent(content)
	if err != nil {
		c.logger.Error("failed to parse model answer", "error", err)
		return nil, err
	}
	return raw, nil
}
