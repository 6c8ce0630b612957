package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"workspace-service/internal/metrics"
)

const anthropicVersion = "2023-06-01"

var (
	ErrEmptyCompletion = errors.New("text generation returned no text")
)

// TextGenerator turns a prompt into a single completion
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextGenConfig configures the messages API client
type TextGenConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// textGenClient calls a messages-style completion API over HTTP
type textGenClient struct {
	cfg        TextGenConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewTextGenerator returns the HTTP client when an API key is configured and
// the canned mock generator otherwise.
func NewTextGenerator(cfg TextGenConfig, logger *zap.Logger, m *metrics.Metrics) TextGenerator {
	if cfg.APIKey == "" {
		logger.Warn("No text generation API key configured, using mock recipes")
		return NewMockTextGenerator()
	}
	return NewTextGenClient(cfg, logger, m)
}

// NewTextGenClient creates a new text generation API client
func NewTextGenClient(cfg TextGenConfig, logger *zap.Logger, m *metrics.Metrics) TextGenerator {
	return &textGenClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

// Generate sends one user message and returns the first text block
func (c *textGenClient) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1/messages", strings.TrimRight(c.cfg.BaseURL, "/"))

	jsonBody, err := json.Marshal(messageRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(url, http.MethodPost, statusCode, duration, err)

	if err != nil {
		c.logger.Error("Text generation request failed",
			zap.Error(err),
			zap.Duration("duration", duration),
		)
		return "", fmt.Errorf("text generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed messageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("Failed to decode text generation response",
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		c.logger.Warn("Text generation API returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", msg),
			zap.Duration("duration", duration),
		)
		return "", fmt.Errorf("text generation API error (status %d): %s", resp.StatusCode, msg)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			c.logger.Info("Text generation completed",
				zap.String("model", c.cfg.Model),
				zap.Int("prompt_length", len(prompt)),
				zap.Int("text_length", len(block.Text)),
				zap.Duration("duration", duration),
			)
			return block.Text, nil
		}
	}
	return "", ErrEmptyCompletion
}
