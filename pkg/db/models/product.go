package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a catalog listing. Slug is unique and derived from the
// title; stock never goes negative (enforced by a DB check plus the checkout
// decrement guard).
type Product struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug                string            `gorm:"column:slug;not null;uniqueIndex"`
	Title               string            `gorm:"column:title;not null"`
	Brand               string            `gorm:"column:brand;not null"`
	CategoryID          uuid.UUID         `gorm:"column:category_id;type:uuid;not null"`
	Category            *Category         `gorm:"foreignKey:CategoryID"`
	Description         *string           `gorm:"column:description"`
	PriceCents          int               `gorm:"column:price_cents;not null"`
	CompareAtPriceCents *int              `gorm:"column:compare_at_price_cents"`
	Stock               int               `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	Rating              float64           `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount         int               `gorm:"column:review_count;not null;default:0"`
	Tags                pq.StringArray    `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	Features            pq.StringArray    `gorm:"column:features;type:text[];not null;default:ARRAY[]::text[]"`
	Specs               map[string]string `gorm:"column:specs;type:jsonb;serializer:json"`
	Images              []ProductImage    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants            []ProductVariant  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	IsFeatured          bool              `gorm:"column:is_featured;not null;default:false"`
	IsActive            bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductImage stores a gallery entry ordered by position.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	URL       string    `gorm:"column:url;not null"`
	Alt       *string   `gorm:"column:alt"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProductVariant is a named option axis (e.g. Size) with its option list.
type ProductVariant struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	Name      string         `gorm:"column:name;not null"`
	Options   pq.StringArray `gorm:"column:options;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}
