package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/pagination"
)

// Repository exposes persistence helpers for product reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params listReviewsParams) ([]ReviewRow, *pagination.Cursor, error)
	Aggregate(ctx context.Context, productID uuid.UUID) (float64, int, error)
	UpdateProductRating(ctx context.Context, productID uuid.UUID, rating float64, count int) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reviews repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listReviewsParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

// ReviewRow carries a review joined with the reviewer's display name.
type ReviewRow struct {
	models.Review
	ReviewerName string
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repositoryImpl) ListByProduct(ctx context.Context, productID uuid.UUID, params listReviewsParams) ([]ReviewRow, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Table("reviews r").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.product_id = ?", productID).
		Select("r.*, u.first_name || ' ' || u.last_name AS reviewer_name")
	if params.Cursor != nil {
		query = query.Where("(r.created_at, r.id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []ReviewRow
	if err := query.Order("r.created_at DESC, r.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) Aggregate(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	var row struct {
		Avg   float64
		Count int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Scan(&row).
		Error
	if err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}

func (r *repositoryImpl) UpdateProductRating(ctx context.Context, productID uuid.UUID, rating float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"rating": rating, "review_count": count}).
		Error
}
