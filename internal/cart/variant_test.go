package cart

import (
	"testing"

	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
)

func variantProduct() *models.Product {
	return &models.Product{
		Variants: []models.ProductVariant{
			{Name: "Size", Options: []string{"S", "M", "L"}},
			{Name: "Color", Options: []string{"Black", "Red"}},
		},
	}
}

func TestNormalizeSelectionKeyIsOrderIndependent(t *testing.T) {
	product := variantProduct()
	key, label, err := NormalizeSelection(product, map[string]string{"Color": "Red", "Size": "M"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "Color:Red|Size:M" {
		t.Fatalf("unexpected key %q", key)
	}
	if label != "M / Red" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestNormalizeSelectionRequiresEveryAxis(t *testing.T) {
	product := variantProduct()
	if _, _, err := NormalizeSelection(product, map[string]string{"Size": "M"}); err == nil {
		t.Fatal("expected error for missing axis")
	}
}

func TestNormalizeSelectionRejectsUnknownAxisAndOption(t *testing.T) {
	product := variantProduct()
	if _, _, err := NormalizeSelection(product, map[string]string{"Size": "M", "Color": "Red", "Fit": "Slim"}); err == nil {
		t.Fatal("expected error for unknown axis")
	}
	if _, _, err := NormalizeSelection(product, map[string]string{"Size": "XL", "Color": "Red"}); err == nil {
		t.Fatal("expected error for invalid option")
	}
}

func TestNormalizeSelectionNoVariants(t *testing.T) {
	product := &models.Product{}
	key, label, err := NormalizeSelection(product, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "" || label != "" {
		t.Fatalf("expected empty key and label, got %q / %q", key, label)
	}
	if _, _, err := NormalizeSelection(product, map[string]string{"Size": "M"}); err == nil {
		t.Fatal("expected error selecting variants on a variantless product")
	}
}
