package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/PabloGalante/lifeline/internal/config"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client    openai.Client
	modelName string
}

func NewOpenAIClient(cfg *config.Config) (*OpenAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		modelName: cfg.ModelName,
	}, nil
}

func (o *OpenAIClient) Name() string {
	return "openai/" + o.modelName
}

// GenerateReply implements domain.LLMClient.
func (o *OpenAIClient) GenerateReply(ctx context.Context, prompt string) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", wrapServiceError(ctx, fmt.Errorf("openai chat completion: %w", err))
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", wrapServiceError(ctx, errors.New("openai returned empty text"))
	}

	return completion.Choices[0].Message.Content, nil
}
