package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating for a product; one per user per product.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_review_product_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_review_product_user"`
	Rating    int       `gorm:"column:rating;not null;check:rating BETWEEN 1 AND 5"`
	Title     *string   `gorm:"column:title"`
	Body      *string   `gorm:"column:body"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
