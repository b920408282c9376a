package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/lifeline/internal/config"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates an LLMClient backed by Gemini, either through the
// Gemini API (API key) or Vertex AI (project and location).
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	switch cfg.GeminiBackend {
	case config.GeminiBackendVertex:
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.GCPProjectID
		cc.Location = cfg.GCPLocation
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY must be set")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.GeminiAPIKey
	}

	if cfg.GeminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: cfg.ModelName,
	}, nil
}

func (g *GeminiClient) Name() string {
	return "gemini/" + g.modelName
}

// GenerateReply implements domain.LLMClient. The prompt is sent as a single user turn.
func (g *GeminiClient) GenerateReply(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(2048),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", wrapServiceError(ctx, fmt.Errorf("gemini generate content: %w", err))
	}

	text := res.Text()
	if text == "" {
		return "", wrapServiceError(ctx, errors.New("gemini returned empty text"))
	}

	return text, nil
}
