package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaModel = "nomic-embed-text"

// OllamaClient talks to Ollama's native embedding API for local
// development (POST {base}/api/embed).
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaClient creates a client for Ollama's native embedding API.
// An empty model falls back to nomic-embed-text.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	host := strings.TrimSuffix(baseURL, "/")
	host = strings.TrimSuffix(host, "/v1")
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaClient{
		baseURL: host,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed returns the embedding vector for a single input.
func (c *OllamaClient) Embed(ctx context.Context, input string) ([]float64, error) {
	if input == "" {
		return nil, errors.New("empty input")
	}

	body, err := json.Marshal(map[string]any{"model": c.model, "input": input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, errors.New("no embedding in response")
	}

	return result.Embeddings[0], nil
}
