package llm

import (
	"context"
	"fmt"
)

// MockLLM answers without calling any service. It echoes the prompt so that
// local runs show exactly what would have been sent.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Name() string {
	return "mock"
}

func (m *MockLLM) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrapServiceError(ctx, err)
	}
	return fmt.Sprintf("I hear you. (mock reply to prompt: %s)", prompt), nil
}
