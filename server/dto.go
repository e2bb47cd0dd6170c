package server

import (
	"time"

	"github.com/kweller/go-prodcat/catalog"
)

// productResponse is the wire shape of a record. Embedding vectors are
// deliberately not part of it: they are large and never needed by callers.
type productResponse struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	Color        string    `json:"color"`
	Material     string    `json:"material"`
	Origin       string    `json:"origin"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Stock        int       `json:"stock"`
	Rating       int       `json:"rating"`
	ReviewsCount int       `json:"reviewsCount"`
	Warranty     string    `json:"warranty"`
	Description  string    `json:"description"`
	Features     string    `json:"features"`
	Tags         []string  `json:"tags"`
	ImageURL     string    `json:"imageUrl"`
	ReleaseDate  string    `json:"releaseDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// searchResponse is a product plus its similarity score: the distance to
// the query vector, ascending across the returned sequence.
type searchResponse struct {
	productResponse
	SimilarityScore float64 `json:"similarityScore"`
}

func toResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Manufacturer: p.Manufacturer,
		Model:        p.Model,
		Color:        p.Color,
		Material:     p.Material,
		Origin:       p.Origin,
		Price:        p.Price,
		Currency:     p.Currency,
		Stock:        p.Stock,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
		Warranty:     p.Warranty,
		Description:  p.Description,
		Features:     p.Features,
		Tags:         p.Tags,
		ImageURL:     p.ImageURL,
		ReleaseDate:  p.ReleaseDate,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
