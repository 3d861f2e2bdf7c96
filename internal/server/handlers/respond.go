package handlers

import (
	"encoding/json"
	"net/http"

	servermw "github.com/quotafence/quotafence/internal/server/middleware"
)

// ErrorDetail is the error body returned to callers.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps ErrorDetail in the standard envelope structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// RespondError writes a JSON error envelope with the request's correlation id.
func RespondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var requestID string
	if r != nil {
		requestID = servermw.GetRequestID(r.Context())
	}

	respondJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
