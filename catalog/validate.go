package catalog

import (
	"time"

	"github.com/google/uuid"
)

// CreateInput is a creation payload. All descriptive and commercial fields
// are required; content fields may be empty, in which case the corresponding
// vector is never computed.
type CreateInput struct {
	SKU          string   `json:"sku"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	Category     string   `json:"category"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Color        string   `json:"color"`
	Material     string   `json:"material"`
	Origin       string   `json:"origin"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	Stock        int      `json:"stock"`
	Rating       int      `json:"rating"`
	ReviewsCount int      `json:"reviewsCount"`
	Warranty     string   `json:"warranty"`
	Description  string   `json:"description"`
	Features     string   `json:"features"`
	Tags         []string `json:"tags"`
	ImageURL     string   `json:"imageUrl"`
	ReleaseDate  string   `json:"releaseDate"`
}

// UpdateInput is a partial-update payload. Nil fields keep their prior
// values. ID, SKU and CreatedAt are immutable; supplying a different value
// for any of them fails validation.
type UpdateInput struct {
	ID           *string    `json:"id"`
	SKU          *string    `json:"sku"`
	Name         *string    `json:"name"`
	Brand        *string    `json:"brand"`
	Category     *string    `json:"category"`
	Manufacturer *string    `json:"manufacturer"`
	Model        *string    `json:"model"`
	Color        *string    `json:"color"`
	Material     *string    `json:"material"`
	Origin       *string    `json:"origin"`
	Price        *float64   `json:"price"`
	Currency     *string    `json:"currency"`
	Stock        *int       `json:"stock"`
	Rating       *int       `json:"rating"`
	ReviewsCount *int       `json:"reviewsCount"`
	Warranty     *string    `json:"warranty"`
	Description  *string    `json:"description"`
	Features     *string    `json:"features"`
	Tags         *[]string  `json:"tags"`
	ImageURL     *string    `json:"imageUrl"`
	ReleaseDate  *string    `json:"releaseDate"`
	CreatedAt    *time.Time `json:"createdAt"`
}

// New validates a creation payload and produces a normalized record with a
// generated id and fresh timestamps. Embedding vectors are not computed here.
func New(in CreateInput) (Product, error) {
	now := time.Now().UTC()
	p := Product{
		ID:           uuid.NewString(),
		SKU:          in.SKU,
		Name:         in.Name,
		Brand:        in.Brand,
		Category:     in.Category,
		Manufacturer: in.Manufacturer,
		Model:        in.Model,
		Color:        in.Color,
		Material:     in.Material,
		Origin:       in.Origin,
		Price:        in.Price,
		Currency:     in.Currency,
		Stock:        in.Stock,
		Rating:       in.Rating,
		ReviewsCount: in.ReviewsCount,
		Warranty:     in.Warranty,
		Description:  in.Description,
		Features:     in.Features,
		Tags:         in.Tags,
		ImageURL:     in.ImageURL,
		ReleaseDate:  in.ReleaseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Merge applies a partial-update payload field by field over an existing
// record. It returns the merged record, the vector fields whose source
// content changed (their stale vectors already cleared), and a validation
// error if the payload touches an immutable field or breaks a bound.
func Merge(existing Product, in UpdateInput) (Product, []VectorField, error) {
	if in.ID != nil && *in.ID != existing.ID {
		return Product{}, nil, invalidf("id", "field is immutable")
	}
	if in.SKU != nil && *in.SKU != existing.SKU {
		return Product{}, nil, invalidf("sku", "field is immutable")
	}
	if in.CreatedAt != nil && !in.CreatedAt.Equal(existing.CreatedAt) {
		return Product{}, nil, invalidf("createdAt", "field is immutable")
	}

	p := existing
	var touched []VectorField

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Manufacturer != nil {
		p.Manufacturer = *in.Manufacturer
	}
	if in.Model != nil {
		p.Model = *in.Model
	}
	if in.Color != nil {
		p.Color = *in.Color
	}
	if in.Material != nil {
		p.Material = *in.Material
	}
	if in.Origin != nil {
		p.Origin = *in.Origin
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Warranty != nil {
		p.Warranty = *in.Warranty
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.ReleaseDate != nil {
		p.ReleaseDate = *in.ReleaseDate
	}

	// Content fields: a change invalidates the derived vector, which the
	// caller recomputes before persisting.
	if in.Description != nil && *in.Description != existing.Description {
		p.Description = *in.Description
		p.DescriptionVector = nil
		touched = append(touched, FieldDescription)
	}
	if in.Features != nil && *in.Features != existing.Features {
		p.Features = *in.Features
		p.FeaturesVector = nil
		touched = append(touched, FieldFeatures)
	}
	if in.Tags != nil && !equalTags(*in.Tags, existing.Tags) {
		p.Tags = *in.Tags
		p.TagsVector = nil
		touched = append(touched, FieldTags)
	}
	if in.ReviewsCount != nil && *in.ReviewsCount != existing.ReviewsCount {
		p.ReviewsCount = *in.ReviewsCount
		p.ReviewsCountVector = nil
		touched = append(touched, FieldReviewsCount)
	}

	if err := validate(p); err != nil {
		return Product{}, nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	return p, touched, nil
}

// validate enforces the record invariants shared by create and update.
func validate(p Product) error {
	required := []struct {
		field string
		value string
	}{
		{"sku", p.SKU},
		{"name", p.Name},
		{"brand", p.Brand},
		{"category", p.Category},
		{"manufacturer", p.Manufacturer},
		{"model", p.Model},
		{"color", p.Color},
		{"material", p.Material},
		{"origin", p.Origin},
	}
	for _, r := range required {
		if r.value == "" {
			return invalidf(r.field, "field is required")
		}
	}
	if p.Price < 0 {
		return invalidf("price", "must not be negative, got %g", p.Price)
	}
	if !validCurrency(p.Currency) {
		return invalidf("currency", "must be a three-letter uppercase code, got %q", p.Currency)
	}
	if p.Stock < 0 {
		return invalidf("stock", "must not be negative, got %d", p.Stock)
	}
	if p.Rating < 1 || p.Rating > 5 {
		return invalidf("rating", "must be between 1 and 5, got %d", p.Rating)
	}
	if p.ReviewsCount < 0 {
		return invalidf("reviewsCount", "must not be negative, got %d", p.ReviewsCount)
	}
	return nil
}

// validCurrency checks for an ISO-4217-like code: exactly three uppercase
// ASCII letters.
func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
