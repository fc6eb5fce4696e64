package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	"github.com/ridelinehq/ridegear-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	CategorySlug  string
	Brand         string
	Tag           string
	PriceMinCents *int
	PriceMaxCents *int
	MinRating     *float64
	InStockOnly   bool
	FeaturedOnly  bool
	Query         string
}

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	Filters       ProductListFilters
	Sort          enums.ProductSort
	Page          pagination.PageParams
	IncludeHidden bool
}

// ProductSummary is the storefront card payload for a product.
type ProductSummary struct {
	ID                  uuid.UUID `json:"id"`
	Slug                string    `json:"slug"`
	Title               string    `json:"title"`
	Brand               string    `json:"brand"`
	CategorySlug        string    `json:"category_slug"`
	PriceCents          int       `json:"price_cents"`
	CompareAtPriceCents *int      `json:"compare_at_price_cents,omitempty"`
	Stock               int       `json:"stock"`
	Rating              float64   `json:"rating"`
	ReviewCount         int       `json:"review_count"`
	ImageURL            *string   `json:"image_url,omitempty"`
	IsFeatured          bool      `json:"is_featured"`
	CreatedAt           time.Time `json:"created_at"`
}

// ProductListResult bundles a catalog page with its pagination envelope.
type ProductListResult struct {
	Products   []ProductSummary `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
}
