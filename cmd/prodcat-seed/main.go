// Command prodcat-seed fills the catalog with generated products so the
// similarity search routes have something to rank. Embeddings go through
// the same gateway as the service, so a seeded store is fully searchable.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/kweller/go-prodcat/catalog"
	"github.com/kweller/go-prodcat/embedding"
	"github.com/kweller/go-prodcat/store"
)

var (
	adjectives = []string{"Rustic", "Sleek", "Ergonomic", "Handcrafted", "Refined", "Durable", "Compact", "Luxurious", "Practical", "Modern"}
	materials  = []string{"Steel", "Wooden", "Cotton", "Granite", "Leather", "Rubber", "Bronze", "Linen"}
	nouns      = []string{"Chair", "Lamp", "Keyboard", "Backpack", "Jacket", "Bottle", "Watch", "Table", "Headset", "Wallet"}
	brands     = []string{"Northwind", "Acme Works", "Bluepine", "Harbor & Co", "Vextron", "Oakfield"}
	categories = []string{"Furniture", "Electronics", "Apparel", "Outdoors", "Accessories"}
	colors     = []string{"red", "black", "navy", "olive", "ivory", "charcoal"}
	origins    = []string{"Germany", "Japan", "Portugal", "Canada", "Vietnam"}
)

func main() {
	count := flag.Int("count", 20, "number of products to generate")
	dsn := flag.String("dsn", os.Getenv("PRODCAT_DB_DSN"), "store DSN (postgres:// or sqlite path)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	policy := store.DefaultPolicy()
	if raw := os.Getenv("EMBED_DIMENSION"); raw != "" {
		if dim, err := strconv.Atoi(raw); err == nil && dim > 0 {
			policy.Dimension = dim
		}
	}

	st, err := store.New(*dsn, policy)
	if err != nil {
		logger.Error("initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := catalog.NewService(st, newGateway(), logger)

	ctx := context.Background()
	created := 0
	for i := 0; i < *count; i++ {
		p, err := svc.Create(ctx, fakeProduct(i))
		if err != nil {
			logger.Error("create product", "error", err)
			os.Exit(1)
		}
		created++
		logger.Info("created", "sku", p.SKU, "name", p.Name)
	}
	logger.Info("seeding done", "count", created)
}

func fakeProduct(i int) catalog.CreateInput {
	adj := pick(adjectives)
	mat := pick(materials)
	noun := pick(nouns)
	name := fmt.Sprintf("%s %s %s", adj, mat, noun)
	tags := []string{strings.ToLower(adj), strings.ToLower(mat), pick(colors)}

	return catalog.CreateInput{
		SKU:          fmt.Sprintf("SEED-%04d-%04d", i, rand.Intn(10000)),
		Name:         name,
		Brand:        pick(brands),
		Category:     pick(categories),
		Manufacturer: pick(brands),
		Model:        fmt.Sprintf("M%05d", rand.Intn(100000)),
		Color:        pick(colors),
		Material:     mat,
		Origin:       pick(origins),
		Price:        float64(rand.Intn(99900)+100) / 100,
		Currency:     "USD",
		Stock:        rand.Intn(1000),
		Rating:       rand.Intn(5) + 1,
		ReviewsCount: rand.Intn(5000),
		Warranty:     fmt.Sprintf("%d years", rand.Intn(5)+1),
		Description:  fmt.Sprintf("The %s combines %s construction with a %s finish, built for everyday use.", name, strings.ToLower(mat), pick(colors)),
		Features:     fmt.Sprintf("%s design. %s body. Easy to clean and maintain.", adj, mat),
		Tags:         tags,
	}
}

func pick(list []string) string {
	return list[rand.Intn(len(list))]
}

func newGateway() embedding.Gateway {
	if apiKey := os.Getenv("EMBED_API_KEY"); apiKey != "" {
		return embedding.NewOpenAIClient(embedding.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: os.Getenv("EMBED_BASE_URL"),
			Model:   os.Getenv("EMBED_MODEL"),
		})
	}
	return embedding.NewOllamaClient(envOr("OLLAMA_URL", "http://localhost:11434"), os.Getenv("EMBED_MODEL"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
