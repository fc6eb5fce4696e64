package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridelinehq/ridegear-backend/pkg/enums"
)

// Coupon is a named discount rule. Code is stored uppercased and unique.
// Scope is "all" or "category:<slug>".
type Coupon struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string           `gorm:"column:code;not null;uniqueIndex"`
	Type       enums.CouponType `gorm:"column:type;not null"`
	Value      int              `gorm:"column:value;not null"`
	Active     bool             `gorm:"column:active;not null;default:true"`
	Scope      string           `gorm:"column:scope;not null;default:'all'"`
	UsageCount int              `gorm:"column:usage_count;not null;default:0"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
