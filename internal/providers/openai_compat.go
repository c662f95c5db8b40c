package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ClientName identifies the OpenAI-compatible client.
const ClientName = "openai-compat"

// OpenAICompatClient talks to any chat-completions endpoint that speaks the
// OpenAI wire format (OpenAI, OpenRouter, Ollama, LM Studio, vLLM, ...).
type OpenAICompatClient struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
	logger     *slog.Logger
}

// ClientConfig configures a new OpenAICompatClient.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	// MaxRetries bounds retry attempts for transient failures (default 3).
	MaxRetries int

	// Timeout for a single HTTP request. Zero means no client-side timeout;
	// vision transcription of dense pages can legitimately take minutes.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewClient creates a client for one provider profile.
func NewClient(cfg ClientConfig) *OpenAICompatClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &OpenAICompatClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: maxRetries,
		logger:     logger.With("client", ClientName),
	}
}

// Name returns the client identifier.
func (c *OpenAICompatClient) Name() string { return ClientName }

// chatRequest is the /chat/completions payload.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	ImageURL *contentImageURL `json:"image_url,omitempty"`
}

type contentImageURL struct {
	URL string `json:"url"`
}

// chatResponse is the subset of the response we read. Missing fields are
// tolerated and default to empty content.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// TranscribePage sends one rendered page image with the profile's prompt to
// the provider and returns the message content.
func (c *OpenAICompatClient) TranscribePage(ctx context.Context, image []byte, prompt string) (string, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "image_url", ImageURL: &contentImageURL{URL: dataURL}},
				{Type: "text", Text: prompt},
			},
		}},
		Stream:    false,
		MaxTokens: MaxCompletionTokens,
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/chat/completions", req)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
