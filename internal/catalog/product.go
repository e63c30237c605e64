// Package catalog defines the product data model shared by the extraction
// strategies, the normalizer, and the HTTP API, together with the input
// validation rules for parse requests.
package catalog

// Product is one listing entry extracted from a category page.
type Product struct {
	// ID is unique within a single response batch only; it is not stable
	// across requests.
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Rating      float64  `json:"rating"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	Link        string   `json:"link"`
}

// ParseResponse is the envelope returned to callers and stored in the
// response cache.
type ParseResponse struct {
	Products     []Product `json:"products"`
	FetchedAtISO string    `json:"fetchedAtISO"`
}

const (
	// DefaultCount is used when the caller omits the count parameter.
	DefaultCount = 10
	// MaxCount bounds how many cards are extracted from one page.
	MaxCount = 50
	// MaxImages caps the deduplicated image list per product.
	MaxImages = 10
	// DefaultRating substitutes a neutral value when no rating is
	// extractable. Callers cannot distinguish it from a real 4.7.
	DefaultRating = 4.7
)
