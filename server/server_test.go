package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweller/go-prodcat/catalog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	mu        sync.Mutex
	products  map[string]catalog.Product
	insertErr error
	searchErr error
	matches   []catalog.Match
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[string]catalog.Product{}}
}

func (s *fakeStore) Insert(_ context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, x := range s.products {
		if x.SKU == p.SKU {
			return catalog.ErrConflict
		}
	}
	s.products[p.ID] = p
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) List(_ context.Context) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) Replace(_ context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *fakeStore) Search(_ context.Context, _ catalog.VectorField, _ []float64, _ int) ([]catalog.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.matches, nil
}

func (s *fakeStore) Close() error { return nil }

type fakeGateway struct {
	err error
}

func (g *fakeGateway) Embed(_ context.Context, _ string) ([]float64, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []float64{1, 0, 0}, nil
}

func newTestServer(store *fakeStore, gw *fakeGateway) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := catalog.NewService(store, gw, logger)
	return New(Config{Catalog: svc, Logger: logger}).Handler()
}

func createBody() string {
	return `{
		"sku": "JKT-0042", "name": "Leather Jacket", "brand": "Northwind",
		"category": "Apparel", "manufacturer": "Northwind Mfg", "model": "NW-42",
		"color": "red", "material": "leather", "origin": "Portugal",
		"price": 199.99, "currency": "USD", "stock": 12, "rating": 4,
		"reviewsCount": 42, "warranty": "2 years",
		"description": "red leather jacket", "features": "water resistant",
		"tags": ["red", "leather"]
	}`
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createProduct(t *testing.T, h http.Handler) map[string]any {
	t.Helper()
	w := doRequest(h, http.MethodPost, "/products", createBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return got
}

func TestHealth(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	w := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateProduct(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	got := createProduct(t, h)

	assert.NotEmpty(t, got["id"])
	assert.Equal(t, "JKT-0042", got["sku"])
	assert.NotContains(t, got, "descriptionVector", "vectors never appear on the wire")
	assert.NotContains(t, got, "reviewsCountVector")
}

func TestCreateProductMalformedBody(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	w := doRequest(h, http.MethodPost, "/products", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	body := strings.Replace(createBody(), `"name": "Leather Jacket",`, `"name": "",`, 1)

	w := doRequest(h, http.MethodPost, "/products", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "name")
	assert.Equal(t, float64(http.StatusBadRequest), resp["statusCode"])
	assert.NotEmpty(t, resp["timestamp"])
}

func TestCreateProductDuplicate(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	createProduct(t, h)

	w := doRequest(h, http.MethodPost, "/products", createBody())
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateProductEmbeddingDown(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{err: errors.New("upstream down")})
	w := doRequest(h, http.MethodPost, "/products", createBody())
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListProducts(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	createProduct(t, h)

	w := doRequest(h, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], "descriptionVector")
}

func TestGetProduct(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	created := createProduct(t, h)
	id := created["id"].(string)

	w := doRequest(h, http.MethodGet, "/products/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, id, got["id"])
}

func TestGetProductBadID(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	w := doRequest(h, http.MethodGet, "/products/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProductNotFound(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	w := doRequest(h, http.MethodGet, "/products/0ee899b4-3f3e-4b9e-9c5a-000000000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProduct(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	created := createProduct(t, h)
	id := created["id"].(string)

	w := doRequest(h, http.MethodPatch, "/products/"+id, `{"price": 89.99}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 89.99, got["price"])
	assert.Equal(t, "JKT-0042", got["sku"])
}

func TestUpdateProductImmutableSKU(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	created := createProduct(t, h)
	id := created["id"].(string)

	w := doRequest(h, http.MethodPatch, "/products/"+id, `{"sku": "OTHER-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})
	created := createProduct(t, h)
	id := created["id"].(string)

	w := doRequest(h, http.MethodDelete, "/products/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(h, http.MethodDelete, "/products/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchByDescription(t *testing.T) {
	store := newFakeStore()
	store.matches = []catalog.Match{
		{Product: catalog.Product{ID: "a", SKU: "A-1", Name: "near"}, Score: 0.1},
		{Product: catalog.Product{ID: "b", SKU: "B-1", Name: "far"}, Score: 0.7},
	}
	h := newTestServer(store, &fakeGateway{})

	w := doRequest(h, http.MethodGet, "/products/search/description?description=red+jacket", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 0.1, got[0]["similarityScore"])
	assert.Equal(t, 0.7, got[1]["similarityScore"])
	assert.Equal(t, "near", got[0]["name"])
	assert.NotContains(t, got[0], "descriptionVector")
}

func TestSearchMissingInput(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})

	for _, path := range []string{
		"/products/search/description",
		"/products/search/features",
		"/products/search/tags",
		"/products/search/review-counts",
	} {
		w := doRequest(h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestSearchInvalidTop(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})

	w := doRequest(h, http.MethodGet, "/products/search/description?description=x&top=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodGet, "/products/search/description?description=x&top=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchReviewCountsNumericInput(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{})

	w := doRequest(h, http.MethodGet, "/products/search/review-counts?reviewsCount=lots", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodGet, "/products/search/review-counts?reviewsCount=-3", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodGet, "/products/search/review-counts?reviewsCount=42", "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSearchEmbeddingDown(t *testing.T) {
	h := newTestServer(newFakeStore(), &fakeGateway{err: errors.New("upstream down")})

	w := doRequest(h, http.MethodGet, "/products/search/description?description=x", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSearchStoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.searchErr = catalog.ErrStoreUnavailable
	h := newTestServer(store, &fakeGateway{})

	w := doRequest(h, http.MethodGet, "/products/search/description?description=x", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearchRateLimited(t *testing.T) {
	store := newFakeStore()
	store.searchErr = catalog.NewRateLimitError(2*time.Second, errors.New("throughput cap"))
	h := newTestServer(store, &fakeGateway{})

	w := doRequest(h, http.MethodGet, "/products/search/description?description=x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}
