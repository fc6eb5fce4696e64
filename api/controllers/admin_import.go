package controllers

import (
	"io"
	"mime"
	"net/http"

	"github.com/ridelinehq/ridegear-backend/api/responses"
	importersvc "github.com/ridelinehq/ridegear-backend/internal/importer"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
)

const maxImportBodyBytes = 8 << 20

// AdminImportProducts ingests a product CSV. The file arrives either as
// a multipart "file" part or as the raw request body.
func AdminImportProducts(svc importersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reader, cleanup, err := importReader(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		result, err := svc.ImportProducts(r.Context(), reader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithFields(r.Context(), map[string]any{
			"created": result.Created,
			"failed":  result.Failed,
		})
		logg.Info(ctx, "product import finished")
		responses.WriteSuccess(w, result)
	}
}

func importReader(r *http.Request) (io.Reader, func(), error) {
	noop := func() {}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return io.LimitReader(r.Body, maxImportBodyBytes), noop, nil
	}
	if err := r.ParseMultipartForm(maxImportBodyBytes); err != nil {
		return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, `multipart field "file" is required`)
	}
	return file, func() { _ = file.Close() }, nil
}
