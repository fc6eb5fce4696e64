package controllers

import (
	"net/http"

	"github.com/ridelinehq/ridegear-backend/api/responses"
	"github.com/ridelinehq/ridegear-backend/api/validators"
	couponssvc "github.com/ridelinehq/ridegear-backend/internal/coupons"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
)

// AdminCouponsList returns every coupon for the dashboard.
func AdminCouponsList(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coupons, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

type createCouponRequest struct {
	Code   string `json:"code" validate:"required"`
	Type   string `json:"type" validate:"required"`
	Value  int    `json:"value" validate:"required,min=1"`
	Active bool   `json:"active"`
	Scope  string `json:"scope,omitempty"`
}

// AdminCouponCreate issues a new coupon code.
func AdminCouponCreate(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		couponType, err := enums.ParseCouponType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon type"))
			return
		}
		coupon, err := svc.Create(r.Context(), couponssvc.CouponInput{
			Code:   payload.Code,
			Type:   couponType,
			Value:  payload.Value,
			Active: payload.Active,
			Scope:  payload.Scope,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

type updateCouponRequest struct {
	Value  *int    `json:"value,omitempty"`
	Active *bool   `json:"active,omitempty"`
	Scope  *string `json:"scope,omitempty"`
}

// AdminCouponUpdate mutates a coupon. The code itself is immutable.
func AdminCouponUpdate(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := pathUUID(r, "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := svc.Update(r.Context(), couponID, couponssvc.UpdateCouponInput{
			Value:  payload.Value,
			Active: payload.Active,
			Scope:  payload.Scope,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

// AdminCouponDelete retires a coupon code.
func AdminCouponDelete(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := pathUUID(r, "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
