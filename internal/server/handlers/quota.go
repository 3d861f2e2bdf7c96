package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quotafence/quotafence/internal/core/quota"
)

// QuotaHandler exposes quota checks and consumption over HTTP.
//
// Store faults fail closed: a caller that cannot be checked is denied rather
// than allowed to bypass its budget.
type QuotaHandler struct {
	Tracker *quota.Tracker
	Logger  *zap.Logger
}

// QuotaResponse reports the tracker's answer for a (policy, subject) pair.
type QuotaResponse struct {
	Policy    string `json:"policy"`
	Subject   string `json:"subject"`
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
}

// Check handles GET /api/v1/quota/{policy}/{subject}.
func (h *QuotaHandler) Check(w http.ResponseWriter, r *http.Request) {
	policy, subject, ok := h.params(w, r)
	if !ok {
		return
	}

	status, err := h.Tracker.Check(r.Context(), policy, subject)
	if err != nil {
		h.fail(w, r, policy, err)
		return
	}

	respondJSON(w, http.StatusOK, QuotaResponse{
		Policy:    policy,
		Subject:   subject,
		Allowed:   status.Allowed,
		Remaining: status.Remaining,
	})
}

// Consume handles POST /api/v1/quota/{policy}/{subject}/consume. The
// response carries the post-consumption status.
func (h *QuotaHandler) Consume(w http.ResponseWriter, r *http.Request) {
	policy, subject, ok := h.params(w, r)
	if !ok {
		return
	}

	if err := h.Tracker.Consume(r.Context(), policy, subject); err != nil {
		h.fail(w, r, policy, err)
		return
	}

	status, err := h.Tracker.Check(r.Context(), policy, subject)
	if err != nil {
		h.fail(w, r, policy, err)
		return
	}

	respondJSON(w, http.StatusOK, QuotaResponse{
		Policy:    policy,
		Subject:   subject,
		Allowed:   status.Allowed,
		Remaining: status.Remaining,
	})
}

func (h *QuotaHandler) params(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	policy := strings.TrimSpace(chi.URLParam(r, "policy"))
	subject := strings.TrimSpace(chi.URLParam(r, "subject"))
	if policy == "" || subject == "" {
		RespondError(w, r, http.StatusBadRequest, "INVALID_INPUT", "policy and subject are required")
		return "", "", false
	}
	return policy, subject, true
}

func (h *QuotaHandler) fail(w http.ResponseWriter, r *http.Request, policy string, err error) {
	if strings.HasPrefix(err.Error(), "unknown quota policy") {
		RespondError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if h.Logger != nil {
		h.Logger.Error("quota store failure",
			zap.String("policy", policy),
			zap.Error(err))
	}
	RespondError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "quota store unavailable")
}
