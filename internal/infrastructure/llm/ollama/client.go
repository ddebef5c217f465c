package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/projectscope/estimation-service/internal/infrastructure/resilience"
)

// Client talks to a local Ollama server. It implements ports.ModelInvoker.
type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

// WithExecutor routes model calls through a circuit breaker and retry policy.
func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func New(baseURL, genModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke performs one generate call and returns the raw completion text.
// Retry and breaker behavior come from the configured executor; without one,
// the call is made exactly once.
func (c *Client) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	request := map[string]any{
		"model":  c.genModel,
		"system": systemPrompt,
		"prompt": userPrompt,
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", request, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}
