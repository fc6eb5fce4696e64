package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

type fakeStore struct {
	cart     *models.CartRecord
	items    []*models.CartItem
	products map[uuid.UUID]*models.Product
}

func newFakeStore(products ...*models.Product) *fakeStore {
	store := &fakeStore{products: map[uuid.UUID]*models.Product{}}
	for _, product := range products {
		store.products[product.ID] = product
	}
	return store
}

func (f *fakeStore) WithTx(tx *gorm.DB) Store { return f }

func (f *fakeStore) FindActiveByUser(_ context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if f.cart == nil || f.cart.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.cart, nil
}

func (f *fakeStore) Create(_ context.Context, cart *models.CartRecord) (*models.CartRecord, error) {
	cart.ID = uuid.New()
	f.cart = cart
	return cart, nil
}

func (f *fakeStore) FindItem(_ context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	for _, item := range f.items {
		if item.CartID == cartID && item.ID == itemID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) FindItemBySelection(_ context.Context, cartID, productID uuid.UUID, variantKey string) (*models.CartItem, error) {
	for _, item := range f.items {
		if item.CartID == cartID && item.ProductID == productID && item.VariantKey == variantKey {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CreateItem(_ context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	f.items = append(f.items, item)
	return nil
}

func (f *fakeStore) SaveItem(_ context.Context, item *models.CartItem) error { return nil }

func (f *fakeStore) DeleteItem(_ context.Context, cartID, itemID uuid.UUID) error {
	kept := f.items[:0]
	for _, item := range f.items {
		if !(item.CartID == cartID && item.ID == itemID) {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeStore) DeleteItems(_ context.Context, cartID uuid.UUID) error {
	kept := f.items[:0]
	for _, item := range f.items {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeStore) ListItems(_ context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range f.items {
		if item.CartID == cartID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveTotals(_ context.Context, cartID uuid.UUID, couponCode *string, totals Totals) error {
	f.cart.CouponCode = couponCode
	f.cart.SubtotalCents = totals.SubtotalCents
	f.cart.TaxCents = totals.TaxCents
	f.cart.ShippingCents = totals.ShippingCents
	f.cart.DiscountCents = totals.DiscountCents
	f.cart.TotalCents = totals.TotalCents
	return nil
}

func (f *fakeStore) MarkConverted(_ context.Context, cartID uuid.UUID) error {
	if f.cart != nil && f.cart.ID == cartID {
		f.cart.Status = enums.CartStatusConverted
	}
	return nil
}

func (f *fakeStore) FindProduct(_ context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type fakeCoupons struct {
	quotes map[string]*CouponQuote
}

func (f *fakeCoupons) QuoteForItems(_ context.Context, code string, _ []models.CartItem) (*CouponQuote, error) {
	if quote, ok := f.quotes[code]; ok {
		return quote, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
}

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func helmet(price, stock int) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		Title:      "Apex Carbon Helmet",
		Brand:      "Vortex",
		PriceCents: price,
		Stock:      stock,
		IsActive:   true,
		Variants: []models.ProductVariant{
			{Name: "Size", Options: []string{"S", "M", "L"}},
		},
	}
}

func newTestService(t *testing.T, store Store, coupons CouponSource) Service {
	t.Helper()
	if coupons == nil {
		coupons = &fakeCoupons{}
	}
	svc, err := NewService(store, coupons, fakeTx{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGetWithoutCartReturnsEmpty(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	dto, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(dto.Items) != 0 || dto.TotalCents != 0 {
		t.Fatalf("expected empty cart, got %+v", dto)
	}
}

func TestAddItemMergesSameSelection(t *testing.T) {
	product := helmet(5999, 10)
	store := newFakeStore(product)
	svc := newTestService(t, store, nil)
	userID := uuid.New()

	input := AddItemInput{ProductID: product.ID, Quantity: 1, Selections: map[string]string{"Size": "M"}}
	if _, err := svc.AddItem(context.Background(), userID, input); err != nil {
		t.Fatalf("first add: %v", err)
	}
	dto, err := svc.AddItem(context.Background(), userID, input)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(dto.Items) != 1 {
		t.Fatalf("expected merged line, got %d items", len(dto.Items))
	}
	if dto.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", dto.Items[0].Quantity)
	}
	if dto.SubtotalCents != 11998 || dto.TaxCents != 959 || dto.ShippingCents != 0 || dto.TotalCents != 12957 {
		t.Fatalf("unexpected totals %+v", dto.Totals)
	}
}

func TestAddItemDistinctSelectionNewLine(t *testing.T) {
	product := helmet(5999, 10)
	store := newFakeStore(product)
	svc := newTestService(t, store, nil)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1, Selections: map[string]string{"Size": "M"}}); err != nil {
		t.Fatalf("add M: %v", err)
	}
	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1, Selections: map[string]string{"Size": "L"}})
	if err != nil {
		t.Fatalf("add L: %v", err)
	}
	if len(dto.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(dto.Items))
	}
}

func TestAddItemInsufficientStock(t *testing.T) {
	product := helmet(5999, 1)
	svc := newTestService(t, newFakeStore(product), nil)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 2, Selections: map[string]string{"Size": "M"}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemInactiveProductHidden(t *testing.T) {
	product := helmet(5999, 10)
	product.IsActive = false
	svc := newTestService(t, newFakeStore(product), nil)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1, Selections: map[string]string{"Size": "M"}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateItemZeroQuantityRemoves(t *testing.T) {
	product := helmet(5999, 10)
	store := newFakeStore(product)
	svc := newTestService(t, store, nil)
	userID := uuid.New()

	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2, Selections: map[string]string{"Size": "M"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	dto, err = svc.UpdateItem(context.Background(), userID, dto.Items[0].ID, 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(dto.Items))
	}
	if dto.Totals != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", dto.Totals)
	}
}

func TestApplyCouponOnEmptyCartRejected(t *testing.T) {
	store := newFakeStore()
	store.cart = &models.CartRecord{ID: uuid.New(), UserID: uuid.New(), Status: enums.CartStatusActive}
	svc := newTestService(t, store, nil)

	_, err := svc.ApplyCoupon(context.Background(), store.cart.UserID, "SAVE10")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyCouponComputesDiscount(t *testing.T) {
	product := helmet(10000, 10)
	product.Variants = nil
	store := newFakeStore(product)
	coupons := &fakeCoupons{quotes: map[string]*CouponQuote{
		"SAVE10": {Code: "SAVE10", Type: enums.CouponTypeFixed, Value: 1000},
	}}
	svc := newTestService(t, store, coupons)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	dto, err := svc.ApplyCoupon(context.Background(), userID, "save10")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if dto.CouponCode == nil || *dto.CouponCode != "SAVE10" {
		t.Fatalf("expected normalized code SAVE10, got %v", dto.CouponCode)
	}
	if dto.DiscountCents != 1000 {
		t.Fatalf("expected discount 1000, got %d", dto.DiscountCents)
	}
	if dto.TotalCents != 11300 {
		t.Fatalf("expected total 11300, got %d", dto.TotalCents)
	}
}

func TestApplyCouponUnknownCode(t *testing.T) {
	product := helmet(10000, 10)
	product.Variants = nil
	store := newFakeStore(product)
	svc := newTestService(t, store, nil)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := svc.ApplyCoupon(context.Background(), userID, "NOPE")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecomputeDropsCouponThatStoppedQuoting(t *testing.T) {
	product := helmet(10000, 10)
	product.Variants = nil
	store := newFakeStore(product)
	coupons := &fakeCoupons{quotes: map[string]*CouponQuote{
		"SAVE10": {Code: "SAVE10", Type: enums.CouponTypeFixed, Value: 1000},
	}}
	svc := newTestService(t, store, coupons)
	userID := uuid.New()

	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.ApplyCoupon(context.Background(), userID, "SAVE10"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// Deactivate the coupon, then trigger a repricing.
	delete(coupons.quotes, "SAVE10")
	dto, err = svc.UpdateItem(context.Background(), userID, dto.Items[0].ID, 1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.CouponCode != nil {
		t.Fatalf("expected coupon dropped, got %v", *dto.CouponCode)
	}
	if dto.DiscountCents != 0 {
		t.Fatalf("expected no discount, got %d", dto.DiscountCents)
	}
}

func TestClearEmptiesCartAndCoupon(t *testing.T) {
	product := helmet(10000, 10)
	product.Variants = nil
	store := newFakeStore(product)
	coupons := &fakeCoupons{quotes: map[string]*CouponQuote{
		"SAVE10": {Code: "SAVE10", Type: enums.CouponTypeFixed, Value: 1000},
	}}
	svc := newTestService(t, store, coupons)
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.ApplyCoupon(context.Background(), userID, "SAVE10"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	dto, err := svc.Clear(context.Background(), userID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(dto.Items) != 0 || dto.CouponCode != nil || dto.Totals != (Totals{}) {
		t.Fatalf("expected empty cart, got %+v", dto)
	}
}
