package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentBlock is an admin-editable storefront content fragment keyed by a
// stable identifier (hero, shipping-banner, about, ...).
type ContentBlock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Key       string    `gorm:"column:key;not null;uniqueIndex"`
	Title     string    `gorm:"column:title;not null"`
	Body      string    `gorm:"column:body;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	Published bool      `gorm:"column:published;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Setting is a key/value storefront setting with a JSON value.
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;type:jsonb;not null;default:'{}'"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
