// Package llm wraps the local text-generation service used to enrich
// failures and write the executive summary. Its public surface never
// returns an error: callers always get usable text, falling back to a
// fixed string when the service is unreachable.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Fallback is returned whenever the analysis service fails.
const Fallback = "AI Analysis could not be generated due to an API error."

const (
	defaultURL     = "http://127.0.0.1:11434/api/generate"
	defaultModel   = "qwen3:8b"
	requestTimeout = 120 * time.Second
)

// Client talks to an Ollama-compatible generate endpoint. Per-failure
// calls may run in parallel, so requests go through a client-side rate
// limiter to avoid overloading a local model server.
type Client struct {
	url        string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a Client. Empty url or model fall back to the local
// Ollama defaults.
func NewClient(url, model string, log logrus.FieldLogger) *Client {
	if url == "" {
		url = defaultURL
	}
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		url:        url,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		log:        log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt and returns the model's text. Any failure maps
// to the Fallback string; the error is logged, never propagated.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.WithError(err).Warn("analysis service call failed")
		return Fallback
	}
	return text
}

// AnalyzeFailure produces a free-text diagnosis for one failed test.
func (c *Client) AnalyzeFailure(ctx context.Context, testName, errorMessage string) string {
	return c.Generate(ctx, failurePrompt(testName, errorMessage))
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate API error: %s - %s", resp.Status, string(body))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Response == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return result.Response, nil
}
