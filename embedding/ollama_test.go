package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbed(t *testing.T) {
	var gotPath string
	var gotReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float64{{0.5, 0.6}}})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "")
	vec, err := c.Embed(context.Background(), "red leather jacket")
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 0.6}, vec)
	assert.Equal(t, "/api/embed", gotPath)
	assert.Equal(t, defaultOllamaModel, gotReq["model"])
	assert.Equal(t, "red leather jacket", gotReq["input"])
}

func TestOllamaTrimsV1Suffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float64{{1}}})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/v1", "custom")
	_, err := c.Embed(context.Background(), "query")
	require.NoError(t, err)
}

func TestOllamaEmbedEmptyInput(t *testing.T) {
	c := NewOllamaClient("http://localhost:11434", "")
	_, err := c.Embed(context.Background(), "")
	require.Error(t, err)
}

func TestOllamaEmbedUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "")
	_, err := c.Embed(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
