package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"feedsift/app/config"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	clientTimeout    = 60 * time.Second
	maxRetries       = 2
)

// Decision is the structured verdict returned by the classifier. Both
// fields may be true at once; the gate resolves the combination.
type Decision struct {
	Accept bool `json:"accept"`
	Reject bool `json:"reject"`
}

// Client speaks the Anthropic Messages API. Transient failures are retried
// with exponential backoff before the error reaches the gate.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

func NewClient(llmCfg config.LLMConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: clientTimeout},
		apiURL:     anthropicURL,
		apiKey:     llmCfg.APIKey,
		model:      llmCfg.Model,
	}
}

// Classify sends the prompt and parses the JSON verdict out of the reply.
func (c *Client) Classify(ctx context.Context, prompt string) (*Decision, error) {
	var decision *Decision

	operation := func() error {
		var err error
		decision, err = c.classifyOnce(ctx, prompt)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return decision, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) classifyOnce(ctx context.Context, prompt string) (*Decision, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call LLM API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("API request failed: %d %s: %s", resp.StatusCode, resp.Status, errBody)
		// Client errors won't heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var apiResponse messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}

	if len(apiResponse.Content) == 0 {
		return nil, backoff.Permanent(fmt.Errorf("no text content in response"))
	}

	return parseDecision(apiResponse.Content[0].Text)
}

// parseDecision parses the model's JSON verdict, tolerating a markdown
// code fence around it.
func parseDecision(content string) (*Decision, error) {
	content = strings.TrimSpace(content)
	if inner, ok := strings.CutPrefix(content, "```json"); ok {
		if inner, ok = strings.CutSuffix(inner, "```"); ok {
			content = strings.TrimSpace(inner)
		}
	}

	var decision Decision
	if err := json.Unmarshal([]byte(content), &decision); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse verdict %q: %w", content, err))
	}

	return &decision, nil
}
