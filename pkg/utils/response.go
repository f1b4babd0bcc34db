package utils

import (
	"encoding/json"
	"net/http"

	"github.com/zhouzirui/scribe/backend/internal/logger"
	"github.com/zhouzirui/scribe/backend/internal/upstream"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError writes {"detail": message}.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Detail: message})
}

// RespondUpstreamError maps any delegation error to a 500 whose detail is the
// original error string. Failures are not classified.
func RespondUpstreamError(w http.ResponseWriter, log logger.Logger, err error) {
	provider := "unknown"
	if f, ok := upstream.AsFailure(err); ok {
		provider = f.Provider
	}
	log.Error("upstream call failed", logger.String("provider", provider), logger.Error(err))
	RespondError(w, http.StatusInternalServerError, err.Error())
}
