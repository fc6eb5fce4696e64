package coupons

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

type fakeStore struct {
	coupons    map[string]*models.Coupon
	categories map[uuid.UUID]string
	usage      map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		coupons:    map[string]*models.Coupon{},
		categories: map[uuid.UUID]string{},
		usage:      map[string]int{},
	}
}

func (f *fakeStore) put(coupon *models.Coupon) *models.Coupon {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	f.coupons[coupon.Code] = coupon
	return coupon
}

func (f *fakeStore) WithTx(tx *gorm.DB) Store { return f }

func (f *fakeStore) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	coupon, ok := f.coupons[strings.ToUpper(code)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return coupon, nil
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*models.Coupon, error) {
	for _, coupon := range f.coupons {
		if coupon.ID == id {
			return coupon, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) List(_ context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, coupon := range f.coupons {
		out = append(out, *coupon)
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	return f.put(coupon), nil
}

func (f *fakeStore) Update(_ context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	f.coupons[coupon.Code] = coupon
	return coupon, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	for code, coupon := range f.coupons {
		if coupon.ID == id {
			delete(f.coupons, code)
		}
	}
	return nil
}

func (f *fakeStore) IncrementUsage(_ context.Context, code string) error {
	f.usage[strings.ToUpper(code)]++
	return nil
}

func (f *fakeStore) ProductCategorySlugs(_ context.Context, productIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range productIDs {
		if slug, ok := f.categories[id]; ok {
			out[id] = slug
		}
	}
	return out, nil
}

func newTestService(t *testing.T, store Store) Service {
	t.Helper()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func cartItems(lineTotals ...int) []models.CartItem {
	items := make([]models.CartItem, 0, len(lineTotals))
	for _, total := range lineTotals {
		items = append(items, models.CartItem{ProductID: uuid.New(), LineTotalCents: total})
	}
	return items
}

func TestQuoteForItemsUnknownCode(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	_, err := svc.QuoteForItems(context.Background(), "NOPE", cartItems(1000))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuoteForItemsInactiveCoupon(t *testing.T) {
	store := newFakeStore()
	store.put(&models.Coupon{Code: "SAVE10", Type: enums.CouponTypeFixed, Value: 1000, Active: false, Scope: ScopeAll})
	svc := newTestService(t, store)

	_, err := svc.QuoteForItems(context.Background(), "SAVE10", cartItems(1000))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuoteForItemsScopeAll(t *testing.T) {
	store := newFakeStore()
	store.put(&models.Coupon{Code: "FREE20", Type: enums.CouponTypePercent, Value: 20, Active: true, Scope: ScopeAll})
	svc := newTestService(t, store)

	quote, err := svc.QuoteForItems(context.Background(), "free20", cartItems(5999, 6000))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.EligibleCents != 11999 {
		t.Fatalf("expected eligible 11999, got %d", quote.EligibleCents)
	}
	if quote.Code != "FREE20" || quote.Type != enums.CouponTypePercent || quote.Value != 20 {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestQuoteForItemsCategoryScope(t *testing.T) {
	store := newFakeStore()
	store.put(&models.Coupon{Code: "HELMETS15", Type: enums.CouponTypePercent, Value: 15, Active: true, Scope: "category:helmets"})
	svc := newTestService(t, store)

	helmet := models.CartItem{ProductID: uuid.New(), LineTotalCents: 4000}
	gloves := models.CartItem{ProductID: uuid.New(), LineTotalCents: 5000}
	store.categories[helmet.ProductID] = "helmets"
	store.categories[gloves.ProductID] = "gloves"

	quote, err := svc.QuoteForItems(context.Background(), "HELMETS15", []models.CartItem{helmet, gloves})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.EligibleCents != 4000 {
		t.Fatalf("expected eligible 4000, got %d", quote.EligibleCents)
	}
}

func TestQuoteForItemsScopeMatchesNothing(t *testing.T) {
	store := newFakeStore()
	store.put(&models.Coupon{Code: "HELMETS15", Type: enums.CouponTypePercent, Value: 15, Active: true, Scope: "category:helmets"})
	svc := newTestService(t, store)

	gloves := models.CartItem{ProductID: uuid.New(), LineTotalCents: 5000}
	store.categories[gloves.ProductID] = "gloves"

	_, err := svc.QuoteForItems(context.Background(), "HELMETS15", []models.CartItem{gloves})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateNormalizesCodeAndScope(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	dto, err := svc.Create(context.Background(), CouponInput{Code: " save10 ", Type: enums.CouponTypeFixed, Value: 1000, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Code != "SAVE10" {
		t.Fatalf("expected uppercased code, got %q", dto.Code)
	}
	if dto.Scope != ScopeAll {
		t.Fatalf("expected default scope all, got %q", dto.Scope)
	}
}

func TestCreateRejectsBadValues(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	cases := []CouponInput{
		{Code: "A", Type: enums.CouponTypePercent, Value: 0},
		{Code: "B", Type: enums.CouponTypePercent, Value: 101},
		{Code: "C", Type: enums.CouponTypeFixed, Value: 0},
		{Code: "D", Type: enums.CouponTypeFixed, Value: 100, Scope: "brand:vortex"},
	}
	for _, input := range cases {
		if _, err := svc.Create(context.Background(), input); pkgerrors.As(err) == nil {
			t.Fatalf("expected validation error for %+v", input)
		}
	}
}

func TestUpdateTogglesActive(t *testing.T) {
	store := newFakeStore()
	coupon := store.put(&models.Coupon{Code: "SAVE10", Type: enums.CouponTypeFixed, Value: 1000, Active: true, Scope: ScopeAll})
	svc := newTestService(t, store)

	active := false
	dto, err := svc.Update(context.Background(), coupon.ID, UpdateCouponInput{Active: &active})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Active {
		t.Fatal("expected coupon deactivated")
	}
}

func TestRedeemForOrderBumpsUsage(t *testing.T) {
	store := newFakeStore()
	store.put(&models.Coupon{Code: "SAVE10", Type: enums.CouponTypeFixed, Value: 1000, Active: true, Scope: ScopeAll})
	svc := newTestService(t, store)

	if err := svc.RedeemForOrder(context.Background(), nil, "save10"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if store.usage["SAVE10"] != 1 {
		t.Fatalf("expected usage 1, got %d", store.usage["SAVE10"])
	}
}
