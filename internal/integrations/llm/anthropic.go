package llm

import (
	"context"
	"errors"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ticketdraft/internal/httpx"
)

type Anthropic struct {
	client    anthropic.Client
	model     string
	system    string
	maxTokens int64
}

func NewAnthropic(apiKey, model, system string, maxTokens int, opts ...option.RequestOption) *Anthropic {
	if maxTokens < 1 {
		maxTokens = 1024
	}
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpx.ExternalHTTPClient()),
	}, opts...)
	return &Anthropic{
		client:    anthropic.NewClient(reqOpts...),
		model:     model,
		system:    system,
		maxTokens: int64(maxTokens),
	}
}

func (a *Anthropic) Invoke(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: a.system, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", &ExternalServiceError{Provider: "Anthropic", Err: err}
	}
	usage := Usage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response model=%s size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d",
				a.model, len(block.Text), usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, nil
		}
	}
	return "", &ExternalServiceError{Provider: "Anthropic", Err: errors.New("no text content in response")}
}
