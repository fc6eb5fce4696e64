package catalog

import (
	"context"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Apex Carbon Helmet", "apex-carbon-helmet"},
		{"  Trail Gloves (V2)  ", "trail-gloves-v2"},
		{"100% Waterproof!!", "100-waterproof"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

type fakeSlugChecker struct {
	taken map[string]bool
}

func (f fakeSlugChecker) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

func TestUniqueSlugSuffixesOnCollision(t *testing.T) {
	checker := fakeSlugChecker{taken: map[string]bool{
		"apex-helmet":   true,
		"apex-helmet-2": true,
	}}

	slug, err := UniqueSlug(context.Background(), checker, "Apex Helmet")
	if err != nil {
		t.Fatalf("unique slug: %v", err)
	}
	if slug != "apex-helmet-3" {
		t.Fatalf("expected apex-helmet-3, got %s", slug)
	}
}

func TestUniqueSlugNoCollision(t *testing.T) {
	slug, err := UniqueSlug(context.Background(), fakeSlugChecker{taken: map[string]bool{}}, "Vented Jacket")
	if err != nil {
		t.Fatalf("unique slug: %v", err)
	}
	if slug != "vented-jacket" {
		t.Fatalf("expected vented-jacket, got %s", slug)
	}
}

func TestUniqueSlugEmptyTitle(t *testing.T) {
	if _, err := UniqueSlug(context.Background(), fakeSlugChecker{}, "!!!"); err == nil {
		t.Fatal("expected error for unsluggable title")
	}
}
