// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError renders err as {"error": message}. Errors that are not an
// AppError become a generic 500 so internal details never leak.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr := errors.Wrap(err, "")
	status := appErr.StatusCode()

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("code", string(appErr.Code)), zap.Error(err))
	}
	writeJSON(w, logger, status, errors.ToErrorResponse(appErr))
}

// decodeAndValidate decodes the JSON body into dst and runs its validate tags
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}
