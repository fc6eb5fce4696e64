package controllers

import (
	"net/http"

	"github.com/ridelinehq/ridegear-backend/api/responses"
	contentsvc "github.com/ridelinehq/ridegear-backend/internal/content"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
)

// ContentSettings serves the storefront settings map (tax display, shipping
// thresholds and similar presentation values).
func ContentSettings(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.ListSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// ContentBlocks serves the published storefront content blocks.
func ContentBlocks(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocks, err := svc.PublishedBlocks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, blocks)
	}
}
