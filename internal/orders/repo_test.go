package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	"github.com/ridelinehq/ridegear-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  brand TEXT NOT NULL DEFAULT '',
  category_id TEXT,
  description TEXT,
  price_cents INTEGER NOT NULL DEFAULT 0,
  compare_at_price_cents INTEGER,
  stock INTEGER NOT NULL DEFAULT 0,
  rating REAL NOT NULL DEFAULT 0,
  review_count INTEGER NOT NULL DEFAULT 0,
  tags TEXT,
  features TEXT,
  specs TEXT,
  is_featured INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  shipping_address TEXT,
  payment_method TEXT NOT NULL,
  payment_ref TEXT,
  coupon_code TEXT,
  subtotal_cents INTEGER NOT NULL,
  tax_cents INTEGER NOT NULL,
  shipping_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_key TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL,
  brand TEXT NOT NULL,
  image_url TEXT,
  variant_label TEXT,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  line_total_cents INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func testOrder(userID uuid.UUID, number string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		Number: number,
		UserID: userID,
		Status: status,
		ShippingAddress: types.Address{
			Line1:      "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
		PaymentMethod: enums.PaymentMethodCard,
		SubtotalCents: 10000,
		TaxCents:      800,
		ShippingCents: 500,
		DiscountCents: 0,
		TotalCents:    11300,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestOrdersRepoCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	order := testOrder(userID, "RG-20260801-000001", enums.OrderStatusPending, time.Now().UTC())
	productID := uuid.New()
	order.Items = []models.OrderItem{
		{
			ID:             uuid.New(),
			ProductID:      productID,
			Title:          "Trail Helmet",
			Brand:          "Apex",
			UnitPriceCents: 5000,
			Quantity:       2,
			LineTotalCents: 10000,
		},
	}

	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "RG-20260801-000001", found.Number)
	assert.Equal(t, userID, found.UserID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, productID, found.Items[0].ProductID)
	assert.Equal(t, 10000, found.Items[0].LineTotalCents)
}

func TestOrdersRepoNumberExists(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder(uuid.New(), "RG-20260803-400001", enums.OrderStatusPending, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	taken, err := repo.NumberExists(ctx, "RG-20260803-400001")
	require.NoError(t, err)
	assert.True(t, taken)

	free, err := repo.NumberExists(ctx, "RG-20260803-999999")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestOrdersRepoListByUserPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := testOrder(userID, "RG-20260801-10000"+string(rune('1'+i)), enums.OrderStatusPaid, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, order))
	}

	page, cursor, err := repo.ListByUser(ctx, userID, listOrdersParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, cursor)
	// Newest first.
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	rest, next, err := repo.ListByUser(ctx, userID, listOrdersParams{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, next)
	assert.True(t, page[1].CreatedAt.After(rest[0].CreatedAt))

	// Every order appears exactly once across the two pages.
	seen := map[string]bool{}
	for _, order := range append(page, rest...) {
		seen[order.Number] = true
	}
	assert.Len(t, seen, 3)
}

func TestOrdersRepoStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, testOrder(userID, "RG-20260802-200001", enums.OrderStatusPending, now)))
	require.NoError(t, repo.Create(ctx, testOrder(userID, "RG-20260802-200002", enums.OrderStatusShipped, now.Add(time.Minute))))

	shipped := enums.OrderStatusShipped
	page, _, err := repo.ListByUser(ctx, userID, listOrdersParams{Limit: 10, Status: &shipped})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, enums.OrderStatusShipped, page[0].Status)
}

func TestOrdersRepoPendingExpirySweep(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()
	stale := testOrder(userID, "RG-20260701-300001", enums.OrderStatusPending, now.Add(-96*time.Hour))
	fresh := testOrder(userID, "RG-20260801-300002", enums.OrderStatusPending, now.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	cutoff := now.Add(-72 * time.Hour)
	pending, err := repo.ListPendingOlderThan(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, stale.ID, pending[0].ID)

	require.NoError(t, repo.UpdateStatus(ctx, stale.ID, enums.OrderStatusCanceled))

	pending, err = repo.ListPendingOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOrdersRepoRestoreStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO products (id, slug, title, brand, stock) VALUES (?, ?, ?, ?, ?)`,
		productID.String(), "trail-helmet", "Trail Helmet", "Apex", 3,
	).Error)

	require.NoError(t, repo.RestoreStock(ctx, productID, 2))

	var stock int
	require.NoError(t, db.Raw(`SELECT stock FROM products WHERE id = ?`, productID.String()).Scan(&stock).Error)
	assert.Equal(t, 5, stock)
}

func TestOrdersRepoUserEmails(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, email) VALUES (?, ?), (?, ?)`,
		alice.String(), alice.String()+"@example.com", bob.String(), bob.String()+"@example.com",
	).Error)

	emails, err := repo.UserEmails(ctx, []uuid.UUID{alice, bob})
	require.NoError(t, err)
	assert.Equal(t, alice.String()+"@example.com", emails[alice])
	assert.Equal(t, bob.String()+"@example.com", emails[bob])

	empty, err := repo.UserEmails(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
