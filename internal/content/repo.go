package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
)

// Repository exposes persistence helpers for content blocks and settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListBlocks(ctx context.Context, publishedOnly bool) ([]models.ContentBlock, error)
	FindBlockByKey(ctx context.Context, key string) (*models.ContentBlock, error)
	FindBlockByID(ctx context.Context, id uuid.UUID) (*models.ContentBlock, error)
	CreateBlock(ctx context.Context, block *models.ContentBlock) error
	UpdateBlock(ctx context.Context, block *models.ContentBlock) error
	DeleteBlock(ctx context.Context, id uuid.UUID) error

	ListSettings(ctx context.Context) ([]models.Setting, error)
	FindSetting(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, setting *models.Setting) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a content repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListBlocks(ctx context.Context, publishedOnly bool) ([]models.ContentBlock, error) {
	query := r.db.WithContext(ctx).Model(&models.ContentBlock{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var blocks []models.ContentBlock
	err := query.Order("position ASC, key ASC").Find(&blocks).Error
	return blocks, err
}

func (r *repositoryImpl) FindBlockByKey(ctx context.Context, key string) (*models.ContentBlock, error) {
	var block models.ContentBlock
	if err := r.db.WithContext(ctx).First(&block, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *repositoryImpl) FindBlockByID(ctx context.Context, id uuid.UUID) (*models.ContentBlock, error) {
	var block models.ContentBlock
	if err := r.db.WithContext(ctx).First(&block, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *repositoryImpl) CreateBlock(ctx context.Context, block *models.ContentBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *repositoryImpl) UpdateBlock(ctx context.Context, block *models.ContentBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}

func (r *repositoryImpl) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContentBlock{}).Error
}

func (r *repositoryImpl) ListSettings(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *repositoryImpl) FindSetting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repositoryImpl) UpsertSetting(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}
