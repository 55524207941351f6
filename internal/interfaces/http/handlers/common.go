// Package handlers contains the HTTP request handlers for the risk
// engine API.
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// errorResponse is the JSON body for every error answer.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error onto its HTTP status using the AppError
// code. Unknown errors become opaque 500s so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !apperrors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    string(apperrors.ErrCodeInternal),
			Message: "internal error",
		})
		return
	}
	writeJSON(w, appErr.Code.HTTPStatus(), errorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}
