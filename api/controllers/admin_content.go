package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ridelinehq/ridegear-backend/api/responses"
	"github.com/ridelinehq/ridegear-backend/api/validators"
	contentsvc "github.com/ridelinehq/ridegear-backend/internal/content"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
)

const maxSettingBodyBytes = 64 << 10

// AdminContentBlocks lists every block, drafts included.
func AdminContentBlocks(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocks, err := svc.ListBlocks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, blocks)
	}
}

type createBlockRequest struct {
	Key       string `json:"key" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body"`
	Position  int    `json:"position" validate:"min=0"`
	Published bool   `json:"published"`
}

// AdminContentBlockCreate adds a content block.
func AdminContentBlockCreate(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createBlockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		block, err := svc.CreateBlock(r.Context(), contentsvc.BlockInput{
			Key:       payload.Key,
			Title:     payload.Title,
			Body:      payload.Body,
			Position:  payload.Position,
			Published: payload.Published,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, block)
	}
}

type updateBlockRequest struct {
	Title     *string `json:"title,omitempty"`
	Body      *string `json:"body,omitempty"`
	Position  *int    `json:"position,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

// AdminContentBlockUpdate mutates a block. The key is immutable.
func AdminContentBlockUpdate(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, err := pathUUID(r, "blockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateBlockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		block, err := svc.UpdateBlock(r.Context(), blockID, contentsvc.UpdateBlockInput{
			Title:     payload.Title,
			Body:      payload.Body,
			Position:  payload.Position,
			Published: payload.Published,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, block)
	}
}

// AdminContentBlockDelete removes a block.
func AdminContentBlockDelete(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blockID, err := pathUUID(r, "blockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteBlock(r.Context(), blockID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminSettingsList returns the whole settings map.
func AdminSettingsList(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.ListSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// AdminSettingGet returns one setting value.
func AdminSettingGet(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setting, err := svc.GetSetting(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}

// AdminSettingPut stores one setting value. The body is the raw JSON
// value itself, not a wrapper object.
func AdminSettingPut(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingBodyBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
			return
		}
		if strings.TrimSpace(string(body)) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body is required"))
			return
		}
		setting, err := svc.PutSetting(r.Context(), chi.URLParam(r, "key"), json.RawMessage(body))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}
