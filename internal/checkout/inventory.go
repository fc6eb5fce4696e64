package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/internal/catalog"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
)

// Inventory is the stock surface checkout needs from the catalog.
type Inventory interface {
	WithTx(tx *gorm.DB) Inventory
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

type catalogInventory struct {
	repo *catalog.Repository
}

// NewCatalogInventory adapts the catalog repository to checkout's inventory
// interface.
func NewCatalogInventory(repo *catalog.Repository) Inventory {
	return &catalogInventory{repo: repo}
}

func (c *catalogInventory) WithTx(tx *gorm.DB) Inventory {
	return &catalogInventory{repo: c.repo.WithTx(tx)}
}

func (c *catalogInventory) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	return c.repo.DecrementStock(ctx, productID, qty)
}

func (c *catalogInventory) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return c.repo.FindByID(ctx, productID)
}
