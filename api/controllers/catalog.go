package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ridelinehq/ridegear-backend/api/responses"
	"github.com/ridelinehq/ridegear-backend/api/validators"
	"github.com/ridelinehq/ridegear-backend/internal/catalog"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
	"github.com/ridelinehq/ridegear-backend/pkg/pagination"
)

const maxSearchLen = 120

// ListProducts serves the storefront browse endpoint.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListProductsQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListProducts(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves the product detail page by slug.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		product, err := svc.GetProductBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListCategories serves the category navigation.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func parseListProductsQuery(r *http.Request) (*catalog.ListProductsInput, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
	if err != nil {
		return nil, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	sort, err := enums.ParseProductSort(strings.TrimSpace(r.URL.Query().Get("sort")))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}

	filters := catalog.ProductListFilters{
		CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
		Brand:        strings.TrimSpace(r.URL.Query().Get("brand")),
		Tag:          strings.TrimSpace(r.URL.Query().Get("tag")),
		Query:        validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("price_min")); raw != "" {
		value, err := validators.ParseQueryInt(r, "price_min", 0, 0, 100_000_000)
		if err != nil {
			return nil, err
		}
		filters.PriceMinCents = &value
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("price_max")); raw != "" {
		value, err := validators.ParseQueryInt(r, "price_max", 0, 0, 100_000_000)
		if err != nil {
			return nil, err
		}
		filters.PriceMaxCents = &value
	}
	if inStock, err := validators.ParseQueryBool(r, "in_stock"); err != nil {
		return nil, err
	} else if inStock != nil {
		filters.InStockOnly = *inStock
	}
	if featured, err := validators.ParseQueryBool(r, "featured"); err != nil {
		return nil, err
	} else if featured != nil {
		filters.FeaturedOnly = *featured
	}

	return &catalog.ListProductsInput{
		Filters: filters,
		Sort:    sort,
		Page:    pagination.PageParams{Page: page, Limit: limit},
	}, nil
}
