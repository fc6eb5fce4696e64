package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

// Service exposes the public content feed plus admin management of blocks
// and storefront settings.
type Service interface {
	PublishedBlocks(ctx context.Context) ([]BlockDTO, error)

	ListBlocks(ctx context.Context) ([]BlockDTO, error)
	CreateBlock(ctx context.Context, input BlockInput) (*BlockDTO, error)
	UpdateBlock(ctx context.Context, blockID uuid.UUID, input UpdateBlockInput) (*BlockDTO, error)
	DeleteBlock(ctx context.Context, blockID uuid.UUID) error

	ListSettings(ctx context.Context) (map[string]json.RawMessage, error)
	GetSetting(ctx context.Context, key string) (*SettingDTO, error)
	PutSetting(ctx context.Context, key string, value json.RawMessage) (*SettingDTO, error)
}

// BlockDTO is the content block payload.
type BlockDTO struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Position  int       `json:"position"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlockInput is the admin payload to create a block.
type BlockInput struct {
	Key       string
	Title     string
	Body      string
	Position  int
	Published bool
}

// UpdateBlockInput holds optional mutation values. The key is immutable so
// storefront templates keep resolving the same block.
type UpdateBlockInput struct {
	Title     *string
	Body      *string
	Position  *int
	Published *bool
}

// SettingDTO is a single settings entry.
type SettingDTO struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type service struct {
	repo Repository
}

// NewService constructs a content service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) PublishedBlocks(ctx context.Context) ([]BlockDTO, error) {
	return s.listBlocks(ctx, true)
}

func (s *service) ListBlocks(ctx context.Context) ([]BlockDTO, error) {
	return s.listBlocks(ctx, false)
}

func (s *service) listBlocks(ctx context.Context, publishedOnly bool) ([]BlockDTO, error) {
	rows, err := s.repo.ListBlocks(ctx, publishedOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list content blocks")
	}
	out := make([]BlockDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toBlockDTO(row))
	}
	return out, nil
}

func (s *service) CreateBlock(ctx context.Context, input BlockInput) (*BlockDTO, error) {
	key := strings.ToLower(strings.TrimSpace(input.Key))
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "block key required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "block title required")
	}

	block := &models.ContentBlock{
		Key:       key,
		Title:     input.Title,
		Body:      input.Body,
		Position:  input.Position,
		Published: input.Published,
	}
	if err := s.repo.CreateBlock(ctx, block); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "block key already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert content block")
	}
	dto := toBlockDTO(*block)
	return &dto, nil
}

func (s *service) UpdateBlock(ctx context.Context, blockID uuid.UUID, input UpdateBlockInput) (*BlockDTO, error) {
	block, err := s.loadBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "block title required")
		}
		block.Title = *input.Title
	}
	if input.Body != nil {
		block.Body = *input.Body
	}
	if input.Position != nil {
		block.Position = *input.Position
	}
	if input.Published != nil {
		block.Published = *input.Published
	}

	if err := s.repo.UpdateBlock(ctx, block); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content block")
	}
	dto := toBlockDTO(*block)
	return &dto, nil
}

func (s *service) DeleteBlock(ctx context.Context, blockID uuid.UUID) error {
	if _, err := s.loadBlock(ctx, blockID); err != nil {
		return err
	}
	if err := s.repo.DeleteBlock(ctx, blockID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete content block")
	}
	return nil
}

func (s *service) ListSettings(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	return out, nil
}

func (s *service) GetSetting(ctx context.Context, key string) (*SettingDTO, error) {
	setting, err := s.repo.FindSetting(ctx, normalizeSettingKey(key))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}
	dto := toSettingDTO(*setting)
	return &dto, nil
}

// PutSetting upserts the key with an arbitrary JSON value. Setting values are
// stored verbatim, so the payload must be valid JSON.
func (s *service) PutSetting(ctx context.Context, key string, value json.RawMessage) (*SettingDTO, error) {
	key = normalizeSettingKey(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key required")
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting value must be valid JSON")
	}

	setting := &models.Setting{Key: key, Value: string(value)}
	if err := s.repo.UpsertSetting(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save setting")
	}
	dto := toSettingDTO(*setting)
	return &dto, nil
}

func (s *service) loadBlock(ctx context.Context, blockID uuid.UUID) (*models.ContentBlock, error) {
	block, err := s.repo.FindBlockByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content block not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content block")
	}
	return block, nil
}

func normalizeSettingKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func toBlockDTO(block models.ContentBlock) BlockDTO {
	return BlockDTO{
		ID:        block.ID,
		Key:       block.Key,
		Title:     block.Title,
		Body:      block.Body,
		Position:  block.Position,
		Published: block.Published,
		UpdatedAt: block.UpdatedAt,
	}
}

func toSettingDTO(setting models.Setting) SettingDTO {
	return SettingDTO{
		Key:       setting.Key,
		Value:     json.RawMessage(setting.Value),
		UpdatedAt: setting.UpdatedAt,
	}
}
