package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quotafence/quotafence/internal/core/fetch"
)

// FetchHandler proxies rate-limited fetches for collaborators that cannot
// link the library directly.
type FetchHandler struct {
	Client *fetch.Client
}

// FetchRequest describes one outbound call.
type FetchRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// Fetch handles POST /api/v1/fetch. The fetch outcome — including throttle
// denials and exhausted retries — is reported in-band in the response body.
func (h *FetchHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "INVALID_INPUT", "request body must be valid JSON")
		return
	}
	if req.URL == "" {
		RespondError(w, r, http.StatusBadRequest, "INVALID_INPUT", "url is required")
		return
	}

	result := h.Client.Fetch(r.Context(), req.URL, fetch.Options{
		Method:  req.Method,
		Headers: req.Headers,
		Body:    req.Body,
	})

	respondJSON(w, http.StatusOK, result)
}
