package controllers

import (
	"net/http"

	"github.com/ridelinehq/ridegear-backend/api/responses"
	"github.com/ridelinehq/ridegear-backend/api/validators"
	analyticssvc "github.com/ridelinehq/ridegear-backend/internal/analytics"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
)

// AdminDashboard serves the analytics dashboard payload. The window
// defaults to the last 30 days.
func AdminDashboard(svc analyticssvc.Service, logg *logger.Logger, lowStockThreshold int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", 0, 0, 365)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dashboard, err := svc.Dashboard(r.Context(), analyticssvc.DashboardParams{
			Days:              days,
			LowStockThreshold: lowStockThreshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}
