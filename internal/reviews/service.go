package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/pagination"
)

// TxRunner runs a function inside a database transaction. *db.Client
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes review reads and submission.
type Service interface {
	ListForProduct(ctx context.Context, productSlug string, params ListParams) (*ListResult, error)
	Create(ctx context.Context, userID uuid.UUID, productSlug string, input CreateInput) (*ReviewDTO, error)
}

// ListParams configures review pagination.
type ListParams struct {
	Limit  int
	Cursor string
}

// CreateInput is the validated review payload.
type CreateInput struct {
	Rating int
	Title  *string
	Body   *string
}

// ReviewDTO is the public review payload.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Rating       int       `json:"rating"`
	Title        *string   `json:"title,omitempty"`
	Body         *string   `json:"body,omitempty"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListResult wraps a review page and the cursor for the next page.
type ListResult struct {
	Items  []ReviewDTO `json:"items"`
	Cursor string      `json:"cursor"`
}

type service struct {
	repo Repository
	tx   TxRunner
}

// NewService constructs a reviews service instance.
func NewService(repo Repository, tx TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListForProduct(ctx context.Context, productSlug string, params ListParams) (*ListResult, error) {
	product, err := s.loadProduct(ctx, s.repo, productSlug)
	if err != nil {
		return nil, err
	}

	query := listReviewsParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, cursorErr := pagination.ParseCursor(params.Cursor)
		if cursorErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, cursorErr, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListByProduct(ctx, product.ID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	items := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toReviewDTO(row))
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

// Create inserts the review and recomputes the product's aggregate rating in
// the same transaction. One review per user per product, enforced by the
// unique index.
func (s *service) Create(ctx context.Context, userID uuid.UUID, productSlug string, input CreateInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var out *ReviewDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := s.loadProduct(ctx, repo, productSlug)
		if err != nil {
			return err
		}

		review := &models.Review{
			ProductID: product.ID,
			UserID:    userID,
			Rating:    input.Rating,
			Title:     input.Title,
			Body:      input.Body,
		}
		if err := repo.Create(ctx, review); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert review")
		}

		avg, count, err := repo.Aggregate(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate reviews")
		}
		rounded, _ := decimal.NewFromFloat(avg).Round(2).Float64()
		if err := repo.UpdateProductRating(ctx, product.ID, rounded, count); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
		}

		dto := toReviewDTO(ReviewRow{Review: *review})
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) loadProduct(ctx context.Context, repo Repository, slug string) (*models.Product, error) {
	product, err := repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func toReviewDTO(row ReviewRow) ReviewDTO {
	return ReviewDTO{
		ID:           row.ID,
		ProductID:    row.ProductID,
		Rating:       row.Rating,
		Title:        row.Title,
		Body:         row.Body,
		ReviewerName: row.ReviewerName,
		CreatedAt:    row.CreatedAt,
	}
}
