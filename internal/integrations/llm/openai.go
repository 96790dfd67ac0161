package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"ticketdraft/internal/httpx"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type OpenAI struct {
	apiKey  string
	model   string
	system  string
	baseURL string
	client  *http.Client
}

func NewOpenAI(apiKey, model, system, baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		system:  system,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpx.ExternalHTTPClient(),
	}
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAI) Invoke(ctx context.Context, prompt string) (string, error) {
	var messages []openAIMessage
	if o.system != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: o.system})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt})

	bodyBytes, err := json.Marshal(openAIRequest{Model: o.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", &ExternalServiceError{Provider: "OpenAI", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ExternalServiceError{Provider: "OpenAI", Err: fmt.Errorf("reading response: %w", err)}
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ExternalServiceError{Provider: "OpenAI", Err: fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err)}
	}
	if parsed.Error != nil {
		log.Printf("llm openai api error: %s", parsed.Error.Message)
		return "", &ExternalServiceError{Provider: "OpenAI", Err: errors.New(parsed.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ExternalServiceError{Provider: "OpenAI", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ExternalServiceError{Provider: "OpenAI", Err: errors.New("no choices in response")}
	}

	text := extractContentText(parsed.Choices[0].Message.Content)
	if strings.TrimSpace(text) == "" {
		return "", &ExternalServiceError{Provider: "OpenAI", Err: errors.New("no text content in response")}
	}

	usage := Usage{}
	if parsed.Usage != nil {
		usage.InputTokens = parsed.Usage.PromptTokens
		usage.OutputTokens = parsed.Usage.CompletionTokens
	}
	log.Printf("llm openai response model=%s size=%d tokens_in=%d tokens_out=%d", o.model, len(text), usage.InputTokens, usage.OutputTokens)
	return text, nil
}

// extractContentText accepts a message content that is either a plain string
// or an array of typed parts, and returns the concatenated text.
func extractContentText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil {
		var out []string
		for _, p := range parts {
			if (p.Type == "" || p.Type == "text" || p.Type == "output_text") && p.Text != "" {
				out = append(out, p.Text)
			}
		}
		return strings.Join(out, "")
	}

	var asObject struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return asObject.Text
	}
	return ""
}
