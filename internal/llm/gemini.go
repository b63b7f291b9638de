// Package llm talks to the Gemini generative-language API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash-8b"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// Config holds the settings for NewGeminiGenerator.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; empty means the public Gemini API.
	BaseURL string
}

// GeminiGenerator implements interfaces.TextGenerator with the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ interfaces.TextGenerator = (*GeminiGenerator)(nil)

func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("llm: creating client: %w", err)
	}

	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

// Generate sends instruction as the system instruction and content as the
// only user turn, and returns the model's text.
func (g *GeminiGenerator) Generate(ctx context.Context, instruction, content string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(content),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ErrNotConfigured is returned by DisabledGenerator.
var ErrNotConfigured = errors.New("llm: no API key configured")

// DisabledGenerator stands in for Gemini when no API key is set, so the rest
// of the API keeps working and draft requests fail with a clear error.
type DisabledGenerator struct{}

var _ interfaces.TextGenerator = DisabledGenerator{}

func (DisabledGenerator) Generate(ctx context.Context, instruction, content string) (string, error) {
	return "", ErrNotConfigured
}
