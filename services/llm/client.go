package llm

import "context"

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any chat completion backend.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userMessage string, params GenerationParams) (string, error)
}
