package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/ridelinehq/ridegear-backend/internal/catalog"
	"github.com/ridelinehq/ridegear-backend/internal/content"
	"github.com/ridelinehq/ridegear-backend/internal/coupons"
	"github.com/ridelinehq/ridegear-backend/internal/users"
	"github.com/ridelinehq/ridegear-backend/pkg/config"
	"github.com/ridelinehq/ridegear-backend/pkg/db"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
	"github.com/ridelinehq/ridegear-backend/pkg/migrate"
	"github.com/ridelinehq/ridegear-backend/pkg/security"
)

const (
	adminEmail           = "admin@ridegear.dev"
	defaultAdminPassword = "ridegear-admin"
)

// Loads demo storefront data for local development. Every section is
// skipped when its table already has rows, so re-running is safe.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()

	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB), catalog.NewCategoryRepository(gormDB), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}
	couponsService, err := coupons.NewService(coupons.NewRepository(gormDB))
	if err != nil {
		logg.Error(ctx, "failed to create coupons service", err)
		os.Exit(1)
	}
	contentService, err := content.NewService(content.NewRepository(gormDB))
	if err != nil {
		logg.Error(ctx, "failed to create content service", err)
		os.Exit(1)
	}

	if err := seedAdminUser(ctx, gormDB, cfg, logg); err != nil {
		logg.Error(ctx, "failed to seed admin user", err)
		os.Exit(1)
	}
	if err := seedCatalog(ctx, gormDB, catalogService, logg); err != nil {
		logg.Error(ctx, "failed to seed catalog", err)
		os.Exit(1)
	}
	if err := seedCoupons(ctx, gormDB, couponsService, logg); err != nil {
		logg.Error(ctx, "failed to seed coupons", err)
		os.Exit(1)
	}
	if err := seedContent(ctx, gormDB, contentService, logg); err != nil {
		logg.Error(ctx, "failed to seed content", err)
		os.Exit(1)
	}

	logg.Info(ctx, "seed complete")
}

func seedAdminUser(ctx context.Context, gormDB *gorm.DB, cfg *config.Config, logg *logger.Logger) error {
	repo := users.NewRepository(gormDB)
	if _, err := repo.FindByEmail(ctx, adminEmail); err == nil {
		logg.Info(ctx, "admin user already present, skipping")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := os.Getenv("RIDEGEAR_SEED_ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return err
	}

	if err := repo.Create(ctx, &models.User{
		Email:        adminEmail,
		PasswordHash: hash,
		FirstName:    "Ride",
		LastName:     "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}); err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "email", adminEmail), "seeded admin user")
	return nil
}

func seedCatalog(ctx context.Context, gormDB *gorm.DB, svc catalog.Service, logg *logger.Logger) error {
	var count int64
	if err := gormDB.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logg.Info(ctx, "catalog already present, skipping")
		return nil
	}

	categories := []catalog.CategoryInput{
		{Name: "Helmets", Description: ptr("Full-face, modular and open-face lids")},
		{Name: "Jackets", Description: ptr("Textile and leather riding jackets")},
		{Name: "Gloves", Description: ptr("Road, touring and track gloves")},
		{Name: "Boots", Description: ptr("Riding boots with ankle protection")},
	}
	for _, input := range categories {
		if _, err := svc.CreateCategory(ctx, input); err != nil {
			return err
		}
	}

	products := []catalog.CreateProductInput{
		{
			Title:        "Apex Carbon Full-Face Helmet",
			Brand:        "Apex",
			CategorySlug: "helmets",
			Description:  ptr("Lightweight carbon shell with Pinlock-ready visor."),
			PriceCents:   32999,
			Stock:        14,
			Tags:         []string{"carbon", "full-face"},
			Features:     []string{"Pinlock-ready visor", "Emergency cheek pad release"},
			Specs:        map[string]string{"weight": "1350g", "certification": "ECE 22.06"},
			Variants:     []catalog.VariantDTO{{Name: "Size", Options: []string{"S", "M", "L", "XL"}}},
			IsFeatured:   true,
			IsActive:     true,
		},
		{
			Title:        "Tourer Waterproof Jacket",
			Brand:        "Meridian",
			CategorySlug: "jackets",
			Description:  ptr("Three-season textile jacket with removable thermal liner."),
			PriceCents:   18999,
			Stock:        22,
			Tags:         []string{"waterproof", "touring"},
			Features:     []string{"CE level 2 armor", "Removable thermal liner"},
			Variants:     []catalog.VariantDTO{{Name: "Size", Options: []string{"M", "L", "XL"}}},
			IsActive:     true,
		},
		{
			Title:        "Circuit Short-Cuff Gloves",
			Brand:        "Apex",
			CategorySlug: "gloves",
			Description:  ptr("Goat leather palm with knuckle sliders."),
			PriceCents:   5999,
			Stock:        40,
			Tags:         []string{"leather", "summer"},
			Variants:     []catalog.VariantDTO{{Name: "Size", Options: []string{"S", "M", "L"}}},
			IsActive:     true,
		},
		{
			Title:        "Trailhead Adventure Boots",
			Brand:        "Northway",
			CategorySlug: "boots",
			Description:  ptr("Waterproof adventure boots with shifter pad."),
			PriceCents:   24999,
			Stock:        9,
			Tags:         []string{"adventure", "waterproof"},
			Variants:     []catalog.VariantDTO{{Name: "Size", Options: []string{"42", "43", "44", "45"}}},
			IsFeatured:   true,
			IsActive:     true,
		},
	}
	for _, input := range products {
		if _, err := svc.CreateProduct(ctx, input); err != nil {
			return err
		}
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"categories": len(categories),
		"products":   len(products),
	}), "seeded catalog")
	return nil
}

func seedCoupons(ctx context.Context, gormDB *gorm.DB, svc coupons.Service, logg *logger.Logger) error {
	var count int64
	if err := gormDB.WithContext(ctx).Model(&models.Coupon{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logg.Info(ctx, "coupons already present, skipping")
		return nil
	}

	seeds := []coupons.CouponInput{
		{Code: "SAVE10", Type: enums.CouponTypeFixed, Value: 1000, Active: true, Scope: "all"},
		{Code: "FREE20", Type: enums.CouponTypePercent, Value: 20, Active: true, Scope: "all"},
	}
	for _, input := range seeds {
		if _, err := svc.Create(ctx, input); err != nil {
			return err
		}
	}
	logg.Info(logg.WithField(ctx, "coupons", len(seeds)), "seeded coupons")
	return nil
}

func seedContent(ctx context.Context, gormDB *gorm.DB, svc content.Service, logg *logger.Logger) error {
	var count int64
	if err := gormDB.WithContext(ctx).Model(&models.ContentBlock{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logg.Info(ctx, "content already present, skipping")
		return nil
	}

	blocks := []content.BlockInput{
		{
			Key:       "home-hero",
			Title:     "Gear up for the season",
			Body:      "Helmets, jackets and boots from the brands riders trust.",
			Position:  0,
			Published: true,
		},
		{
			Key:       "shipping-banner",
			Title:     "Free shipping over $100",
			Body:      "Orders above $100 ship free anywhere in the lower 48.",
			Position:  1,
			Published: true,
		},
	}
	for _, input := range blocks {
		if _, err := svc.CreateBlock(ctx, input); err != nil {
			return err
		}
	}

	settings := map[string]json.RawMessage{
		"tax_rate_percent":              json.RawMessage(`8`),
		"free_shipping_threshold_cents": json.RawMessage(`10000`),
		"flat_shipping_cents":           json.RawMessage(`1500`),
	}
	for key, value := range settings {
		if _, err := svc.PutSetting(ctx, key, value); err != nil {
			return err
		}
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"blocks":   len(blocks),
		"settings": len(settings),
	}), "seeded content")
	return nil
}

func ptr(s string) *string {
	return &s
}
