package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starford/cardsmith/internal/models"
)

// Options configures the OpenAI-compatible client.
type Options struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.openai.com/v1"
	}
	if o.Model == "" {
		o.Model = "gpt-4.1-mini"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
}

// Client calls a chat-completions endpoint.
type Client struct {
	url    string
	model  string
	apiKey string
	do     func(*http.Request) (*http.Response, error)
	logger *slog.Logger
}

// New returns a NameExtractor. Without an API key the extractor is Noop.
func New(opts Options, logger *slog.Logger) NameExtractor {
	if opts.APIKey == "" {
		return Noop{}
	}
	opts.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	hc := &http.Client{Timeout: opts.Timeout}
	return &Client{
		url:    strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		model:  opts.Model,
		apiKey: opts.APIKey,
		do:     hc.Do,
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Names asks the model for the names in s. Failures are logged and yield
// an empty list.
func (c *Client) Names(ctx context.Context, s models.CoverState) []string {
	text := FullText(s)
	if text == "" {
		return []string{}
	}
	reply, err := c.complete(ctx, Prompt(text))
	if err != nil {
		c.logger.Warn("analysis: name extraction failed", slog.String("error", err.Error()))
		return []string{}
	}
	return ParseNames(reply)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("upstream %d: %s", resp.StatusCode, strings.TrimSpace(string(slurp)))
	}
	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty reply")
	}
	return cr.Choices[0].Message.Content, nil
}
