// Package ollama adapts the external embedding/LLM provider. Every call
// goes through the resilience executor so a persistently failing provider
// trips the breaker and dependent components degrade fail-open instead of
// waiting out timeouts.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kitaplik/reading-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

// Complete returns a short completion for a JSON-shaped prompt. Callers
// apply their own strict deadlines through ctx.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.execute(ctx, "ollama.generate", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	})
	if err != nil {
		return "", wrapProviderError("generate completion", err)
	}
	return strings.TrimSpace(response.Response), nil
}

// EmbedQuery turns query text into a fixed-dimension vector.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]any{
		"model": c.embedModel,
		"input": []string{text},
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	err := c.execute(ctx, "ollama.embed", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/embed", reqBody, &response, "embed")
	})
	if err != nil {
		return nil, wrapProviderError("embed query", err)
	}
	if len(response.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return response.Embeddings[0], nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyProviderError)
}
