package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// Client calls an OpenRouter-compatible chat-completions API. It is the
// single classification backend shared by the classifier, the guardrail,
// and the ticket archiver.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxRetries  int
	httpClient  *http.Client
	logger      *logger.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// NewClient creates a new classification backend client
func NewClient(cfg *config.LLMConfig, log *logger.Logger) *Client {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  retries,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      log,
	}
}

// Infer sends the system prompt plus conversation history and returns the
// raw completion text. Callers parse the result defensively.
func (c *Client) Infer(ctx context.Context, systemPrompt string, history []types.Turn) (string, error) {
	if c.apiKey == "" {
		return "", types.NewExternalError(types.ErrCodeExternalError, "LLM API key not configured", nil)
	}

	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		role := "user"
		if turn.Role == types.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Text})
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   4096,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", types.NewExternalError(types.ErrCodeExternalError, "LLM call cancelled", ctx.Err())
			}
		}

		text, retryable, err := c.doRequest(ctx, &reqBody)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.logger.WithComponent("llm").Warnf("LLM request failed (attempt %d/%d): %v", attempt+1, c.maxRetries, err)
	}

	return "", types.NewExternalError(types.ErrCodeExternalError, "classification backend unreachable", lastErr)
}

// doRequest performs a single chat-completions request. The second return
// value reports whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, reqBody *chatRequest) (string, bool, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.LLMCall("chat_completion", time.Since(start).Milliseconds(), resp.StatusCode == http.StatusOK)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("empty choices in response")
	}

	return parsed.Choices[0].Message.Content, false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripCodeFence removes a surrounding markdown code fence from a model
// reply, tolerating a language tag after the opening fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop a language tag like "json" on the opening fence line
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}[]") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
