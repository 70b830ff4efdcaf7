package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	BaseURL     string        // default "http://localhost:11434"
	Model       string        // required, e.g. "qwen2.5-coder"
	Temperature float64
	MaxTokens   int           // max output tokens per completion
	HTTPTimeout time.Duration // default 120s
}

// OllamaClient implements Client against a local Ollama server using its
// streaming chat API. Streaming keeps the request cancelable between tokens.
type OllamaClient struct {
	client *api.Client
	cfg    OllamaConfig
}

// NewOllamaClient validates cfg and constructs an OllamaClient.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 120 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	return &OllamaClient{
		client: api.NewClient(base, httpClient),
		cfg:    cfg,
	}, nil
}

// Complete sends the request as a chat conversation: the system prompt,
// each memory entry as a prior assistant turn, then the user prompt.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]api.Message, 0, len(req.Memory)+2)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, entry := range req.Memory {
		messages = append(messages, api.Message{Role: "assistant", Content: entry})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	stream := true
	chatReq := &api.ChatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": c.cfg.Temperature,
			"num_predict": c.cfg.MaxTokens,
		},
	}

	var sb strings.Builder
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", classify(err, statusErr.StatusCode)
		}
		return "", classify(err, 0)
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", &FatalError{Err: fmt.Errorf("model %q returned an empty completion", c.cfg.Model)}
	}
	return out, nil
}
