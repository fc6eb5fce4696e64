package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestInitSchemaCoversCoreTables(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var initFile string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_init_schema.sql") {
			initFile = filepath.Join(migrationsDir, e.Name())
		}
	}
	if initFile == "" {
		t.Fatal("init schema migration not found")
	}

	b, err := os.ReadFile(initFile)
	if err != nil {
		t.Fatalf("read init schema: %v", err)
	}
	sql := string(b)

	for _, table := range []string{
		"users", "categories", "products", "product_images", "product_variants",
		"cart_records", "cart_items", "orders", "order_items",
		"coupons", "reviews", "content_blocks", "settings",
	} {
		if !strings.Contains(sql, "CREATE TABLE "+table+" (") {
			t.Errorf("init schema missing table %q", table)
		}
	}

	if !strings.Contains(sql, "UNIQUE (cart_id, product_id, variant_key)") {
		t.Error("cart_items missing merge-key unique constraint")
	}
	if !strings.Contains(sql, "CHECK (stock >= 0)") {
		t.Error("products missing non-negative stock check")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Loyalty Points!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_loyalty_points.sql") {
		t.Fatalf("unexpected filename: %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration failed validation: %v", err)
	}
}
