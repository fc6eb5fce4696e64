package controllers

import (
	"net/http"

	"github.com/ridelinehq/ridegear-backend/api/responses"
	"github.com/ridelinehq/ridegear-backend/api/validators"
	"github.com/ridelinehq/ridegear-backend/internal/catalog"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
)

type createProductRequest struct {
	Title               string                    `json:"title" validate:"required"`
	Brand               string                    `json:"brand" validate:"required"`
	CategorySlug        string                    `json:"category_slug" validate:"required"`
	Description         *string                   `json:"description,omitempty"`
	PriceCents          int                       `json:"price_cents" validate:"required,min=1"`
	CompareAtPriceCents *int                      `json:"compare_at_price_cents,omitempty"`
	Stock               int                       `json:"stock" validate:"min=0"`
	Tags                []string                  `json:"tags,omitempty"`
	Features            []string                  `json:"features,omitempty"`
	Specs               map[string]string         `json:"specs,omitempty"`
	Images              []catalog.ProductImageDTO `json:"images,omitempty"`
	Variants            []catalog.VariantDTO      `json:"variants,omitempty"`
	IsFeatured          bool                      `json:"is_featured"`
	IsActive            bool                      `json:"is_active"`
}

// AdminProductCreate adds a product to the catalog.
func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			Title:               payload.Title,
			Brand:               payload.Brand,
			CategorySlug:        payload.CategorySlug,
			Description:         payload.Description,
			PriceCents:          payload.PriceCents,
			CompareAtPriceCents: payload.CompareAtPriceCents,
			Stock:               payload.Stock,
			Tags:                payload.Tags,
			Features:            payload.Features,
			Specs:               payload.Specs,
			Images:              payload.Images,
			Variants:            payload.Variants,
			IsFeatured:          payload.IsFeatured,
			IsActive:            payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Title               *string                    `json:"title,omitempty"`
	Brand               *string                    `json:"brand,omitempty"`
	CategorySlug        *string                    `json:"category_slug,omitempty"`
	Description         *string                    `json:"description,omitempty"`
	PriceCents          *int                       `json:"price_cents,omitempty"`
	CompareAtPriceCents *int                       `json:"compare_at_price_cents,omitempty"`
	Stock               *int                       `json:"stock,omitempty"`
	Tags                *[]string                  `json:"tags,omitempty"`
	Features            *[]string                  `json:"features,omitempty"`
	Specs               *map[string]string         `json:"specs,omitempty"`
	Images              *[]catalog.ProductImageDTO `json:"images,omitempty"`
	Variants            *[]catalog.VariantDTO      `json:"variants,omitempty"`
	IsFeatured          *bool                      `json:"is_featured,omitempty"`
	IsActive            *bool                      `json:"is_active,omitempty"`
}

// AdminProductUpdate mutates a product.
func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.UpdateProduct(r.Context(), productID, catalog.UpdateProductInput{
			Title:               payload.Title,
			Brand:               payload.Brand,
			CategorySlug:        payload.CategorySlug,
			Description:         payload.Description,
			PriceCents:          payload.PriceCents,
			CompareAtPriceCents: payload.CompareAtPriceCents,
			Stock:               payload.Stock,
			Tags:                payload.Tags,
			Features:            payload.Features,
			Specs:               payload.Specs,
			Images:              payload.Images,
			Variants:            payload.Variants,
			IsFeatured:          payload.IsFeatured,
			IsActive:            payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete retires a product from the catalog.
func AdminProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// AdminProductAdjustStock applies a signed stock adjustment.
func AdminProductAdjustStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.AdjustStock(r.Context(), productID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminProductsListAll serves the dashboard catalog listing, hidden
// products included.
func AdminProductsListAll(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListProductsQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.IncludeHidden = true
		result, err := svc.ListProducts(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminLowStock lists products at or below the restock threshold.
func AdminLowStock(svc catalog.Service, logg *logger.Logger, defaultThreshold int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold, err := validators.ParseQueryInt(r, "threshold", defaultThreshold, 0, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.ListLowStock(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
