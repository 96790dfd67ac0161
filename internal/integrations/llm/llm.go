package llm

import (
	"context"
	"fmt"
	"strings"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// Invoker sends one prompt to a text-generation service and returns its text.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// InvokerFunc adapts a plain function to Invoker.
type InvokerFunc func(ctx context.Context, prompt string) (string, error)

func (f InvokerFunc) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ExternalServiceError is returned when a provider call fails or the
// response carries no usable text.
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

type Options struct {
	Provider  string
	APIKey    string
	Model     string
	System    string
	MaxTokens int
	BaseURL   string // OpenAI only; empty uses the public endpoint
}

// NewInvoker builds the invoker for the configured provider.
func NewInvoker(opts Options) (Invoker, error) {
	switch strings.TrimSpace(opts.Provider) {
	case "anthropic":
		model := opts.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		return NewAnthropic(opts.APIKey, model, opts.System, opts.MaxTokens), nil
	case "openai":
		model := opts.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAI(opts.APIKey, model, opts.System, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("llm_provider must be 'anthropic' or 'openai', got '%s'", opts.Provider)
	}
}

// ModelName reports the model an invoker targets, for audit records.
func ModelName(inv Invoker) string {
	switch v := inv.(type) {
	case *Anthropic:
		return v.model
	case *OpenAI:
		return v.model
	default:
		return ""
	}
}
