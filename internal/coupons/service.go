package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/internal/cart"
	"github.com/ridelinehq/ridegear-backend/pkg/db"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

const (
	// ScopeAll applies the coupon to the whole cart.
	ScopeAll = "all"
	// categoryScopePrefix limits the coupon to one category's items.
	categoryScopePrefix = "category:"
)

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests swap in a fake.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, code string) error
	ProductCategorySlugs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service exposes coupon quoting for carts plus admin management.
type Service interface {
	QuoteForItems(ctx context.Context, code string, items []models.CartItem) (*cart.CouponQuote, error)
	RedeemForOrder(ctx context.Context, tx *gorm.DB, code string) error

	List(ctx context.Context) ([]CouponDTO, error)
	Create(ctx context.Context, input CouponInput) (*CouponDTO, error)
	Update(ctx context.Context, couponID uuid.UUID, input UpdateCouponInput) (*CouponDTO, error)
	Delete(ctx context.Context, couponID uuid.UUID) error
}

// CouponDTO is the admin payload for a coupon.
type CouponDTO struct {
	ID         uuid.UUID        `json:"id"`
	Code       string           `json:"code"`
	Type       enums.CouponType `json:"type"`
	Value      int              `json:"value"`
	Active     bool             `json:"active"`
	Scope      string           `json:"scope"`
	UsageCount int              `json:"usage_count"`
	CreatedAt  time.Time        `json:"created_at"`
}

// CouponInput is the admin payload to create a coupon.
type CouponInput struct {
	Code   string
	Type   enums.CouponType
	Value  int
	Active bool
	Scope  string
}

// UpdateCouponInput holds optional mutation values for a coupon. The code is
// immutable once issued so replayed order references stay meaningful.
type UpdateCouponInput struct {
	Value  *int
	Active *bool
	Scope  *string
}

type service struct {
	store Store
}

// NewService constructs a coupon service instance.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("coupon store required")
	}
	return &service{store: store}, nil
}

// QuoteForItems resolves a code against the cart's items. The returned quote
// carries the scope-eligible subtotal so pricing can discount only the items
// the coupon covers.
func (s *service) QuoteForItems(ctx context.Context, code string, items []models.CartItem) (*cart.CouponQuote, error) {
	coupon, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if !coupon.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	}

	eligible, err := s.eligibleCents(ctx, coupon.Scope, items)
	if err != nil {
		return nil, err
	}
	if eligible == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon does not apply to these items").
			WithDetails(map[string]any{"scope": coupon.Scope})
	}

	return &cart.CouponQuote{
		Code:          coupon.Code,
		Type:          coupon.Type,
		Value:         coupon.Value,
		EligibleCents: eligible,
	}, nil
}

// RedeemForOrder bumps the usage counter inside the checkout transaction.
func (s *service) RedeemForOrder(ctx context.Context, tx *gorm.DB, code string) error {
	store := s.store
	if tx != nil {
		store = s.store.WithTx(tx)
	}
	if err := store.IncrementUsage(ctx, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon redemption")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	out := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCouponDTO(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CouponInput) (*CouponDTO, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if err := validateValue(input.Type, input.Value); err != nil {
		return nil, err
	}
	scope, err := normalizeScope(input.Scope)
	if err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:   code,
		Type:   input.Type,
		Value:  input.Value,
		Active: input.Active,
		Scope:  scope,
	}
	if _, err := s.store.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert coupon")
	}
	dto := toCouponDTO(*coupon)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, couponID uuid.UUID, input UpdateCouponInput) (*CouponDTO, error) {
	coupon, err := s.store.FindByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if input.Value != nil {
		if err := validateValue(coupon.Type, *input.Value); err != nil {
			return nil, err
		}
		coupon.Value = *input.Value
	}
	if input.Active != nil {
		coupon.Active = *input.Active
	}
	if input.Scope != nil {
		scope, scopeErr := normalizeScope(*input.Scope)
		if scopeErr != nil {
			return nil, scopeErr
		}
		coupon.Scope = scope
	}

	if _, err := s.store.Update(ctx, coupon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	dto := toCouponDTO(*coupon)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, couponID uuid.UUID) error {
	if _, err := s.store.FindByID(ctx, couponID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if err := s.store.Delete(ctx, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return nil
}

// eligibleCents sums the line totals the coupon scope covers. Zero means the
// scope matched nothing; pricing treats zero as "whole cart", so callers must
// reject before quoting.
func (s *service) eligibleCents(ctx context.Context, scope string, items []models.CartItem) (int, error) {
	if scope == "" || scope == ScopeAll {
		total := 0
		for _, item := range items {
			total += item.LineTotalCents
		}
		return total, nil
	}

	slug := strings.TrimPrefix(scope, categoryScopePrefix)
	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	categories, err := s.store.ProductCategorySlugs(ctx, productIDs)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve item categories")
	}

	total := 0
	for _, item := range items {
		if categories[item.ProductID] == slug {
			total += item.LineTotalCents
		}
	}
	return total, nil
}

func validateValue(couponType enums.CouponType, value int) error {
	switch couponType {
	case enums.CouponTypePercent:
		if value < 1 || value > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "percent value must be between 1 and 100")
		}
	case enums.CouponTypeFixed:
		if value < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "fixed value must be positive")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown coupon type")
	}
	return nil
}

func normalizeScope(scope string) (string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" || scope == ScopeAll {
		return ScopeAll, nil
	}
	if strings.HasPrefix(scope, categoryScopePrefix) {
		slug := strings.TrimPrefix(scope, categoryScopePrefix)
		if strings.TrimSpace(slug) == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "scope category slug required")
		}
		return scope, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "scope must be \"all\" or \"category:<slug>\"")
}

func toCouponDTO(coupon models.Coupon) CouponDTO {
	return CouponDTO{
		ID:         coupon.ID,
		Code:       coupon.Code,
		Type:       coupon.Type,
		Value:      coupon.Value,
		Active:     coupon.Active,
		Scope:      coupon.Scope,
		UsageCount: coupon.UsageCount,
		CreatedAt:  coupon.CreatedAt,
	}
}
