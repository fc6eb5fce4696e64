package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
)

// ProductDTO is the full detail payload returned for a single product.
type ProductDTO struct {
	ID                  uuid.UUID         `json:"id"`
	Slug                string            `json:"slug"`
	Title               string            `json:"title"`
	Brand               string            `json:"brand"`
	CategorySlug        string            `json:"category_slug"`
	CategoryName        string            `json:"category_name"`
	Description         *string           `json:"description,omitempty"`
	PriceCents          int               `json:"price_cents"`
	CompareAtPriceCents *int              `json:"compare_at_price_cents,omitempty"`
	Stock               int               `json:"stock"`
	Rating              float64           `json:"rating"`
	ReviewCount         int               `json:"review_count"`
	Tags                []string          `json:"tags"`
	Features            []string          `json:"features"`
	Specs               map[string]string `json:"specs,omitempty"`
	Images              []ProductImageDTO `json:"images"`
	Variants            []VariantDTO      `json:"variants"`
	IsFeatured          bool              `json:"is_featured"`
	IsActive            bool              `json:"is_active"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// ProductImageDTO is a gallery entry.
type ProductImageDTO struct {
	URL      string  `json:"url"`
	Alt      *string `json:"alt,omitempty"`
	Position int     `json:"position"`
}

// VariantDTO is a variant axis with its options.
type VariantDTO struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// CategoryDTO is the public category payload.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:                  product.ID,
		Slug:                product.Slug,
		Title:               product.Title,
		Brand:               product.Brand,
		Description:         product.Description,
		PriceCents:          product.PriceCents,
		CompareAtPriceCents: product.CompareAtPriceCents,
		Stock:               product.Stock,
		Rating:              product.Rating,
		ReviewCount:         product.ReviewCount,
		Tags:                product.Tags,
		Features:            product.Features,
		Specs:               product.Specs,
		Images:              make([]ProductImageDTO, 0, len(product.Images)),
		Variants:            make([]VariantDTO, 0, len(product.Variants)),
		IsFeatured:          product.IsFeatured,
		IsActive:            product.IsActive,
		CreatedAt:           product.CreatedAt,
		UpdatedAt:           product.UpdatedAt,
	}
	if product.Category != nil {
		dto.CategorySlug = product.Category.Slug
		dto.CategoryName = product.Category.Name
	}
	for _, image := range product.Images {
		dto.Images = append(dto.Images, ProductImageDTO{URL: image.URL, Alt: image.Alt, Position: image.Position})
	}
	for _, variant := range product.Variants {
		dto.Variants = append(dto.Variants, VariantDTO{Name: variant.Name, Options: variant.Options})
	}
	return dto
}

func toCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Slug:        category.Slug,
		Name:        category.Name,
		Description: category.Description,
		ImageURL:    category.ImageURL,
	}
}
