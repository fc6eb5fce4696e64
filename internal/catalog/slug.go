package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a display title into a URL-safe slug.
func Slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// UniqueSlug derives a slug from title and suffixes -2, -3, ... until free.
func UniqueSlug(ctx context.Context, checker slugChecker, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", fmt.Errorf("title %q produces an empty slug", title)
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
