package store

import "github.com/kweller/go-prodcat/catalog"

// tableSchema is the explicit physical layout of the products collection:
// one row per record, the partition key as primary key, the generated id
// unique within it, scalar attributes in a single document column, and one
// dedicated typed column per embedding vector.
type tableSchema struct {
	Table        string
	PartitionKey string
	UniqueKey    string
}

var productsSchema = tableSchema{
	Table:        "products",
	PartitionKey: "sku",
	UniqueKey:    "id",
}

// productDoc is the scalar document persisted in the doc column. Vector
// fields appear here only when the index policy includes them in
// general-purpose document indexing; the dedicated columns stay
// authoritative either way.
type productDoc struct {
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

	DescriptionVector  []float64 `json:"descriptionVector,omitempty"`
	FeaturesVector     []float64 `json:"featuresVector,omitempty"`
	TagsVector         []float64 `json:"tagsVector,omitempty"`
	ReviewsCountVector []float64 `json:"reviewsCountVector,omitempty"`
}

// toDoc projects a record into its document form. Vectors are mirrored
// into the document only for policy-included fields.
func toDoc(p catalog.Product, policy Policy) productDoc {
	doc := productDoc{
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
	}
	if fp, ok := policy.Fields[catalog.FieldDescription]; ok && fp.Included {
		doc.DescriptionVector = p.DescriptionVector
	}
	if fp, ok := policy.Fields[catalog.FieldFeatures]; ok && fp.Included {
		doc.FeaturesVector = p.FeaturesVector
	}
	if fp, ok := policy.Fields[catalog.FieldTags]; ok && fp.Included {
		doc.TagsVector = p.TagsVector
	}
	if fp, ok := policy.Fields[catalog.FieldReviewsCount]; ok && fp.Included {
		doc.ReviewsCountVector = p.ReviewsCountVector
	}
	return doc
}

// applyDoc copies the scalar document fields onto a record. Mirrored
// vectors in the document are ignored; the dedicated columns are the only
// source for them.
func applyDoc(doc productDoc, p *catalog.Product) {
	p.Name = doc.Name
	p.Brand = doc.Brand
	p.Category = doc.Category
	p.Manufacturer = doc.Manufacturer
	p.Model = doc.Model
	p.Color = doc.Color
	p.Material = doc.Material
	p.Origin = doc.Origin
	p.Price = doc.Price
	p.Currency = doc.Currency
	p.Stock = doc.Stock
	p.Rating = doc.Rating
	p.ReviewsCount = doc.ReviewsCount
	p.Warranty = doc.Warranty
	p.Description = doc.Description
	p.Features = doc.Features
	p.Tags = doc.Tags
	p.ImageURL = doc.ImageURL
	p.ReleaseDate = doc.ReleaseDate
}
