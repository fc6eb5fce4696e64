package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	"github.com/ridelinehq/ridegear-backend/pkg/pagination"
)

// Repository wires together catalog persistence for products and categories.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads a product with images, variants, and its category.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Variants").
		First(&product, "slug = ?", slug).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SlugExists reports whether any product already uses the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("slug = ?", slug).
		Count(&count).
		Error
	return count > 0, err
}

// CreateProduct inserts a new product row with its associations.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// ReplaceImages replaces the product gallery in display order.
func (r *Repository) ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	return tx.Create(&images).Error
}

// ReplaceVariants replaces the variant axes for a product.
func (r *Repository) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if len(variants) == 0 {
		return nil
	}
	return tx.Create(&variants).Error
}

// DecrementStock reduces stock by qty and reports whether the guard matched.
// The WHERE clause keeps stock from going negative under concurrent checkouts.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RestoreStock adds qty back after a cancellation.
func (r *Repository) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).
		Error
}

// UpdateRating writes the recomputed aggregate rating for a product.
func (r *Repository) UpdateRating(ctx context.Context, productID uuid.UUID, rating float64, reviewCount int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"rating": rating, "review_count": reviewCount}).
		Error
}

// ListLowStock returns active products at or below the threshold.
func (r *Repository) ListLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListProductSummaries runs the filtered, sorted, paged catalog query.
func (r *Repository) ListProductSummaries(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	page := input.Page.Normalize()

	qb := r.db.WithContext(ctx).
		Table("products p").
		Joins("JOIN categories c ON c.id = p.category_id")

	if !input.IncludeHidden {
		qb = qb.Where("p.is_active = ?", true)
	}

	filter := input.Filters
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		qb = qb.Where("c.slug = ?", slug)
	}
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		qb = qb.Where("LOWER(p.brand) = ?", strings.ToLower(brand))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		qb = qb.Where("? = ANY(p.tags)", tag)
	}
	if filter.PriceMinCents != nil {
		qb = qb.Where("p.price_cents >= ?", *filter.PriceMinCents)
	}
	if filter.PriceMaxCents != nil {
		qb = qb.Where("p.price_cents <= ?", *filter.PriceMaxCents)
	}
	if filter.MinRating != nil {
		qb = qb.Where("p.rating >= ?", *filter.MinRating)
	}
	if filter.InStockOnly {
		qb = qb.Where("p.stock > 0")
	}
	if filter.FeaturedOnly {
		qb = qb.Where("p.is_featured = ?", true)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(p.title) LIKE ? OR LOWER(p.brand) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, err
	}

	qb = qb.Select(strings.Join([]string{
		"p.id",
		"p.slug",
		"p.title",
		"p.brand",
		"c.slug AS category_slug",
		"p.price_cents",
		"p.compare_at_price_cents",
		"p.stock",
		"p.rating",
		"p.review_count",
		"p.is_featured",
		"p.created_at",
		"(SELECT i.url FROM product_images i WHERE i.product_id = p.id ORDER BY i.position ASC LIMIT 1) AS image_url",
	}, ", "))

	switch input.Sort {
	case enums.ProductSortPriceAsc:
		qb = qb.Order("p.price_cents ASC").Order("p.id ASC")
	case enums.ProductSortPriceDesc:
		qb = qb.Order("p.price_cents DESC").Order("p.id ASC")
	case enums.ProductSortRating:
		qb = qb.Order("p.rating DESC").Order("p.review_count DESC").Order("p.id ASC")
	default:
		qb = qb.Order("p.created_at DESC").Order("p.id DESC")
	}

	var records []productSummaryRecord
	if err := qb.Limit(page.Limit).Offset(page.Offset()).Scan(&records).Error; err != nil {
		return nil, err
	}

	summaries := make([]ProductSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.toSummary())
	}

	return &ProductListResult{
		Products:   summaries,
		Total:      total,
		Page:       page.Page,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}, nil
}

type productSummaryRecord struct {
	ID                  uuid.UUID
	Slug                string
	Title               string
	Brand               string
	CategorySlug        string
	PriceCents          int
	CompareAtPriceCents *int
	Stock               int
	Rating              float64
	ReviewCount         int
	IsFeatured          bool
	ImageURL            *string
	CreatedAt           time.Time
}

func (r productSummaryRecord) toSummary() ProductSummary {
	return ProductSummary{
		ID:                  r.ID,
		Slug:                r.Slug,
		Title:               r.Title,
		Brand:               r.Brand,
		CategorySlug:        r.CategorySlug,
		PriceCents:          r.PriceCents,
		CompareAtPriceCents: r.CompareAtPriceCents,
		Stock:               r.Stock,
		Rating:              r.Rating,
		ReviewCount:         r.ReviewCount,
		ImageURL:            r.ImageURL,
		IsFeatured:          r.IsFeatured,
		CreatedAt:           r.CreatedAt,
	}
}

// CategoryRepository handles category persistence.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository builds a category repository.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// WithTx returns a category repository bound to the provided transaction.
func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindBySlug returns the category with the given slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByID returns the category with the given ID.
func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// SlugExists reports whether any category already uses the slug.
func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("slug = ?", slug).
		Count(&count).
		Error
	return count > 0, err
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Update saves a category.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category; products must be reassigned first.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

// CountProducts returns how many products reference the category.
func (r *CategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&count).
		Error
	return count, err
}
