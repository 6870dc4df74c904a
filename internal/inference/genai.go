package inference

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"smart-todo/internal/suggest"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GenAIConfig configures the Gemini provider. BaseURL is only set to point
// the client at a proxy or a local test server.
type GenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GenAIProvider asks Gemini for a JSON suggestion.
type GenAIProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenAIProvider creates a Gemini-backed provider.
func NewGenAIProvider(ctx context.Context, cfg GenAIConfig) (*GenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}
	return &GenAIProvider{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (p *GenAIProvider) Infer(ctx context.Context, req suggest.Request) (any, error) {
	userPrompt, err := renderPrompt(req)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   500,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), config)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate: %w", err)
	}
	return decodeContent(resp.Text()), nil
}

// Name returns the provider name.
func (p *GenAIProvider) Name() string {
	return fmt.Sprintf("genai:%s", p.model)
}
