package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ec-simulator/internal/logger"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// ErrMissingAPIKey is returned before any request is made.
var ErrMissingAPIKey = errors.New("API key is missing")

// CompletionRequest carries the caller's own key; nothing is stored between calls.
type CompletionRequest struct {
	APIKey string
	Model  string
	Prompt string
	// JSON asks the provider for an application/json reply.
	JSON bool
}

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionError is a failure reported by the provider. Message is the
// provider's own text, unmodified.
type CompletionError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *CompletionError) Error() string {
	return e.Message
}

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	BaseURL string
	Client  *http.Client
	Log     *logger.Logger
}

// NewGeminiClient defaults baseURL to the public endpoint.
func NewGeminiClient(baseURL string, timeout time.Duration, log *logger.Logger) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GeminiClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Log:     log,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	if req.Model == "" {
		return "", errors.New("model is required")
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.JSON {
		body.GenerationConfig = &geminiGenerationConfig{ResponseMimeType: "application/json"}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	// {base}/v1beta/models/{model}:generateContent
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, url.PathEscape(req.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-goog-api-key", req.APIKey)

	lctx := c.Log.WithField(ctx, "model", req.Model)
	start := time.Now()
	resp, err := c.Client.Do(httpReq)
	if err != nil {
		c.Log.Error(lctx, "gemini.request_failed", err)
		return "", &CompletionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	lctx = c.Log.WithFields(lctx, map[string]any{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode != http.StatusOK {
		cerr := providerError(resp, payload)
		c.Log.Error(lctx, "gemini.error_response", cerr)
		return "", cerr
	}

	var out geminiResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", &CompletionError{
			StatusCode: resp.StatusCode,
			Status:     "BLOCKED",
			Message:    "prompt blocked: " + out.PromptFeedback.BlockReason,
		}
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &CompletionError{StatusCode: resp.StatusCode, Message: "empty response from model"}
	}

	c.Log.Info(lctx, "gemini.completed")
	return sb.String(), nil
}

func providerError(resp *http.Response, payload []byte) *CompletionError {
	var body geminiErrorBody
	if err := json.Unmarshal(payload, &body); err == nil && body.Error.Message != "" {
		return &CompletionError{
			StatusCode: resp.StatusCode,
			Status:     body.Error.Status,
			Message:    body.Error.Message,
		}
	}
	msg := strings.TrimSpace(string(payload))
	if msg == "" {
		msg = resp.Status
	}
	return &CompletionError{StatusCode: resp.StatusCode, Status: resp.Status, Message: msg}
}
