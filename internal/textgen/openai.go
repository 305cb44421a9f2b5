package textgen

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAI is the live capability backed by a chat-completions endpoint.
type OpenAI struct {
    apiKey      string
    model       string
    baseURL     string
    temperature float64
    client      *http.Client
    limiter     *rate.Limiter
}

type OpenAIOption func(*OpenAI)

func WithBaseURL(u string) OpenAIOption {
    return func(c *OpenAI) {
        if u != "" { c.baseURL = strings.TrimRight(u, "/") }
    }
}

func WithTemperature(t float64) OpenAIOption { return func(c *OpenAI) { c.temperature = t } }

func WithHTTPClient(h *http.Client) OpenAIOption { return func(c *OpenAI) { c.client = h } }

// WithRateLimit caps outbound calls per second; rps <= 0 disables the cap.
func WithRateLimit(rps float64) OpenAIOption {
    return func(c *OpenAI) {
        if rps > 0 {
            c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
        } else {
            c.limiter = nil
        }
    }
}

func NewOpenAI(apiKey, model string, opts ...OpenAIOption) *OpenAI {
    c := &OpenAI{
        apiKey:  apiKey,
        model:   model,
        baseURL: defaultBaseURL,
        client:  &http.Client{Timeout: 60 * time.Second},
    }
    for _, o := range opts {
        o(c)
    }
    return c
}

type chatRequest struct {
    Model          string          `json:"model"`
    Messages       []Message       `json:"messages"`
    Temperature    float64         `json:"temperature"`
    ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
    Type string `json:"type"`
}

type chatResponse struct {
    Choices []struct {
        Message struct {
            Content string `json:"content"`
        } `json:"message"`
    } `json:"choices"`
}

func (c *OpenAI) Generate(ctx context.Context, msgs []Message) (string, error) {
    if len(msgs) == 0 {
        return "", fmt.Errorf("openai: messages must not be empty")
    }
    if c.limiter != nil {
        if err := c.limiter.Wait(ctx); err != nil {
            return "", fmt.Errorf("openai: rate limit: %w", err)
        }
    }

    body, err := json.Marshal(chatRequest{
        Model:          c.model,
        Messages:       msgs,
        Temperature:    c.temperature,
        ResponseFormat: &responseFormat{Type: "json_object"},
    })
    if err != nil {
        return "", fmt.Errorf("openai: marshal request: %w", err)
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
    if err != nil {
        return "", fmt.Errorf("openai: create request: %w", err)
    }
    req.Header.Set("Authorization", "Bearer "+c.apiKey)
    req.Header.Set("Content-Type", "application/json")

    resp, err := c.client.Do(req)
    if err != nil {
        return "", fmt.Errorf("%w: openai: %w", ErrUnavailable, err)
    }
    defer func() { _ = resp.Body.Close() }()

    if resp.StatusCode != http.StatusOK {
        return "", fmt.Errorf("%w: openai error: %d", ErrUnavailable, resp.StatusCode)
    }

    var out chatResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return "", fmt.Errorf("%w: openai: decode response: %w", ErrBadReply, err)
    }
    if len(out.Choices) == 0 {
        return "", fmt.Errorf("%w: openai: empty choices in response", ErrBadReply)
    }
    return out.Choices[0].Message.Content, nil
}
