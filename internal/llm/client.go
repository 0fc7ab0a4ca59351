package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"aireas/internal/contextutil"
)

// Client wraps the Gemini API for plain and structured completions.
// Calls are paced by a rate limiter and guarded by a circuit breaker so a
// degraded provider fails fast instead of piling up sessions.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "gemini",
		Interval: 10 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &Client{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		breaker: breaker,
	}, nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Raw exposes the underlying genai client for collaborators that manage
// their own model configuration (embeddings, tool chat).
func (c *Client) Raw() *genai.Client {
	return c.client
}

// ModelName returns the configured chat model name.
func (c *Client) ModelName() string {
	return c.model
}

// Generate runs a plain completion with an optional system instruction and
// returns the concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	model := c.client.GenerativeModel(c.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := c.generate(ctx, model, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "generate failed", "model", c.model, "error", err)
		return "", err
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("model returned no text")
	}
	return text, nil
}

// GenerateStructured runs a completion constrained to the given JSON schema
// and decodes the result into out. A response that does not decode into the
// schema surfaces as an error; callers decide whether that is fatal.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	logger := contextutil.LoggerFromContext(ctx)

	model := c.client.GenerativeModel(c.model)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.GenerationConfig.ResponseSchema = schema

	resp, err := c.generate(ctx, model, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "structured generate failed", "model", c.model, "error", err)
		return err
	}

	text := responseText(resp)
	if text == "" {
		return fmt.Errorf("model returned no structured output")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode structured output: %w", err)
	}
	return nil
}

// generate applies pacing and the breaker around a single GenerateContent call.
func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (*genai.GenerateContentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return model.GenerateContent(ctx, genai.Text(prompt))
	})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return result.(*genai.GenerateContentResponse), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
