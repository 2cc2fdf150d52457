package handler

import (
	"net/http"
	"time"

	"github.com/relayworks/giftcard-relay/internal/domain"
	"github.com/relayworks/giftcard-relay/internal/middleware"
	"github.com/relayworks/giftcard-relay/internal/service"
)

// IssuanceHandler handles gift-card issuance HTTP requests.
type IssuanceHandler struct {
	service *service.IssuanceService
	metrics *Metrics
}

// NewIssuanceHandler creates a new IssuanceHandler.
func NewIssuanceHandler(svc *service.IssuanceService, metrics *Metrics) *IssuanceHandler {
	return &IssuanceHandler{
		service: svc,
		metrics: metrics,
	}
}

// Issue relays one issuance request through the pipeline. On success the
// provider's body is returned to the caller verbatim; on failure the
// normalized error envelope is returned with the mapped status.
func (h *IssuanceHandler) Issue(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	start := time.Now()

	var req domain.IssuanceRequest
	if err := DecodeJSON(r, &req); err != nil {
		status, resp := service.Normalize(err, requestID)
		h.record("decode_failed", "", start)
		JSON(w, status, resp)
		return
	}

	outcome := h.service.Issue(r.Context(), requestID, &req)

	if outcome.Err != nil {
		h.record(outcomeLabel(outcome.Status), outcome.Err.ErrorCode, start)
		JSON(w, outcome.Status, outcome.Err)
		return
	}

	h.record("issued", "", start)
	Raw(w, outcome.Status, outcome.Body)
}

func (h *IssuanceHandler) record(outcome, code string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordIssuance(outcome, time.Since(start))
	if code != "" {
		h.metrics.RecordProviderError(code)
	}
}

func outcomeLabel(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "validation_failed"
	case status >= 500:
		return "transport_failed"
	default:
		return "provider_rejected"
	}
}
