package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

// Service exposes catalog browsing and admin product management.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (*ProductDTO, error)
	ListLowStock(ctx context.Context, threshold int) ([]ProductSummary, error)

	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Title               string
	Brand               string
	CategorySlug        string
	Description         *string
	PriceCents          int
	CompareAtPriceCents *int
	Stock               int
	Tags                []string
	Features            []string
	Specs               map[string]string
	Images              []ProductImageDTO
	Variants            []VariantDTO
	IsFeatured          bool
	IsActive            bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Title               *string
	Brand               *string
	CategorySlug        *string
	Description         *string
	PriceCents          *int
	CompareAtPriceCents *int
	Stock               *int
	Tags                *[]string
	Features            *[]string
	Specs               *map[string]string
	Images              *[]ProductImageDTO
	Variants            *[]VariantDTO
	IsFeatured          *bool
	IsActive            *bool
}

// CategoryInput is the admin payload for category create/update.
type CategoryInput struct {
	Name        string
	Description *string
	ImageURL    *string
}

type service struct {
	repo         *Repository
	categoryRepo *CategoryRepository
	dbClient     *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, categoryRepo *CategoryRepository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if categoryRepo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, categoryRepo: categoryRepo, dbClient: dbClient}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	result, err := s.repo.ListProductSummaries(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return toProductDTO(product), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCategoryDTO(row))
	}
	return out, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, input.CategorySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category").WithDetails(map[string]any{"category": input.CategorySlug})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	var created *models.Product
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		slug, slugErr := UniqueSlug(ctx, repo, input.Title)
		if slugErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, slugErr, "derive slug")
		}

		product := &models.Product{
			Slug:                slug,
			Title:               strings.TrimSpace(input.Title),
			Brand:               strings.TrimSpace(input.Brand),
			CategoryID:          category.ID,
			Description:         input.Description,
			PriceCents:          input.PriceCents,
			CompareAtPriceCents: input.CompareAtPriceCents,
			Stock:               input.Stock,
			Tags:                input.Tags,
			Features:            input.Features,
			Specs:               input.Specs,
			IsFeatured:          input.IsFeatured,
			IsActive:            input.IsActive,
		}
		if _, createErr := repo.CreateProduct(ctx, product); createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "insert product")
		}

		if imgErr := repo.ReplaceImages(ctx, product.ID, imageModels(product.ID, input.Images)); imgErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, imgErr, "insert product images")
		}
		if varErr := repo.ReplaceVariants(ctx, product.ID, variantModels(product.ID, input.Variants)); varErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, varErr, "insert product variants")
		}

		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProductBySlug(ctx, created.Slug)
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var slug string
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, findErr := repo.FindByID(ctx, productID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load product")
		}

		if input.CategorySlug != nil {
			category, catErr := s.categoryRepo.WithTx(tx).FindBySlug(ctx, *input.CategorySlug)
			if catErr != nil {
				if errors.Is(catErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "unknown category").WithDetails(map[string]any{"category": *input.CategorySlug})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, catErr, "load category")
			}
			product.CategoryID = category.ID
		}

		if input.Title != nil && strings.TrimSpace(*input.Title) != product.Title {
			product.Title = strings.TrimSpace(*input.Title)
			newSlug, slugErr := UniqueSlug(ctx, repo, product.Title)
			if slugErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, slugErr, "derive slug")
			}
			product.Slug = newSlug
		}
		if input.Brand != nil {
			product.Brand = strings.TrimSpace(*input.Brand)
		}
		if input.Description != nil {
			product.Description = input.Description
		}
		if input.PriceCents != nil {
			product.PriceCents = *input.PriceCents
		}
		if input.CompareAtPriceCents != nil {
			product.CompareAtPriceCents = input.CompareAtPriceCents
		}
		if input.Stock != nil {
			product.Stock = *input.Stock
		}
		if input.Tags != nil {
			product.Tags = *input.Tags
		}
		if input.Features != nil {
			product.Features = *input.Features
		}
		if input.Specs != nil {
			product.Specs = *input.Specs
		}
		if input.IsFeatured != nil {
			product.IsFeatured = *input.IsFeatured
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}

		if _, saveErr := repo.UpdateProduct(ctx, product); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "update product")
		}

		if input.Images != nil {
			if imgErr := repo.ReplaceImages(ctx, product.ID, imageModels(product.ID, *input.Images)); imgErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, imgErr, "replace product images")
			}
		}
		if input.Variants != nil {
			if varErr := repo.ReplaceVariants(ctx, product.ID, variantModels(product.ID, *input.Variants)); varErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, varErr, "replace product variants")
			}
		}

		slug = product.Slug
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProductBySlug(ctx, slug)
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (*ProductDTO, error) {
	var slug string
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, findErr := repo.FindByID(ctx, productID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load product")
		}

		next := product.Stock + delta
		if next < 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "stock cannot go negative").WithDetails(map[string]any{"stock": product.Stock, "delta": delta})
		}
		product.Stock = next
		if _, saveErr := repo.UpdateProduct(ctx, product); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "update stock")
		}
		slug = product.Slug
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProductBySlug(ctx, slug)
}

func (s *service) ListLowStock(ctx context.Context, threshold int) ([]ProductSummary, error) {
	rows, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	out := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProductSummary{
			ID:                  row.ID,
			Slug:                row.Slug,
			Title:               row.Title,
			Brand:               row.Brand,
			PriceCents:          row.PriceCents,
			CompareAtPriceCents: row.CompareAtPriceCents,
			Stock:               row.Stock,
			Rating:              row.Rating,
			ReviewCount:         row.ReviewCount,
			IsFeatured:          row.IsFeatured,
			CreatedAt:           row.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	slug, err := UniqueSlug(ctx, s.categoryRepo, input.Name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "derive slug")
	}

	category := &models.Category{
		Slug:        slug,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if _, err := s.categoryRepo.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
	}
	dto := toCategoryDTO(*category)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if name := strings.TrimSpace(input.Name); name != "" && name != category.Name {
		category.Name = name
		slug, slugErr := UniqueSlug(ctx, s.categoryRepo, name)
		if slugErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, slugErr, "derive slug")
		}
		category.Slug = slug
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.ImageURL != nil {
		category.ImageURL = input.ImageURL
	}

	if _, err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	dto := toCategoryDTO(*category)
	return &dto, nil
}

func (s *service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	count, err := s.categoryRepo.CountProducts(ctx, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has products").WithDetails(map[string]any{"products": count})
	}
	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func imageModels(productID uuid.UUID, images []ProductImageDTO) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(images))
	for i, image := range images {
		position := image.Position
		if position == 0 {
			position = i
		}
		out = append(out, models.ProductImage{
			ProductID: productID,
			URL:       image.URL,
			Alt:       image.Alt,
			Position:  position,
		})
	}
	return out
}

func variantModels(productID uuid.UUID, variants []VariantDTO) []models.ProductVariant {
	out := make([]models.ProductVariant, 0, len(variants))
	for _, variant := range variants {
		out = append(out, models.ProductVariant{
			ProductID: productID,
			Name:      variant.Name,
			Options:   variant.Options,
		})
	}
	return out
}
