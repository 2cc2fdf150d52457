package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/relayworks/giftcard-relay/internal/domain"
	"github.com/relayworks/giftcard-relay/internal/signer"
	"github.com/relayworks/giftcard-relay/internal/translator"
)

// state is one step of the issuance pipeline. Transitions only move forward:
// validating -> signing -> calling -> responding. Any failure jumps straight
// to responding; no state is ever retried.
type state int

const (
	stateValidating state = iota
	stateSigning
	stateCalling
	stateResponding
)

func (s state) String() string {
	switch s {
	case stateValidating:
		return "validating"
	case stateSigning:
		return "signing"
	case stateCalling:
		return "calling"
	case stateResponding:
		return "responding"
	}
	return "unknown"
}

// Outcome is the terminal result of one issuance attempt: either the
// provider's success body verbatim, or a normalized error envelope.
type Outcome struct {
	Status int
	Body   json.RawMessage
	Err    *ErrorResponse
}

// IssuanceService orchestrates one issuance request through the pipeline.
type IssuanceService struct {
	translator *translator.Translator
	signer     *signer.Signer
	provider   domain.GiftCardProvider
	logger     *slog.Logger
	now        func() time.Time
}

// NewIssuanceService creates an IssuanceService.
func NewIssuanceService(
	t *translator.Translator,
	s *signer.Signer,
	p domain.GiftCardProvider,
	logger *slog.Logger,
) *IssuanceService {
	return &IssuanceService{
		translator: t,
		signer:     s,
		provider:   p,
		logger:     logger,
		now:        time.Now,
	}
}

// SetNow overrides the clock used to stamp attempts. Tests use this to pin
// the signature timestamp.
func (s *IssuanceService) SetNow(now func() time.Time) {
	s.now = now
}

// run carries one attempt's data across states.
type run struct {
	requestID string
	req       *domain.IssuanceRequest
	payload   *domain.ProviderRequest
	signature string
	timestamp string
	body      json.RawMessage
	err       error
}

// Issue drives one request through the state machine and returns the terminal
// outcome. The provider is called at most once; a validation failure never
// produces an outbound call.
func (s *IssuanceService) Issue(ctx context.Context, requestID string, req *domain.IssuanceRequest) Outcome {
	r := &run{requestID: requestID, req: req}

	for st := stateValidating; st != stateResponding; {
		st = s.step(ctx, st, r)
	}

	return s.respond(r)
}

// step executes a single state and returns the next one.
func (s *IssuanceService) step(ctx context.Context, st state, r *run) state {
	switch st {
	case stateValidating:
		payload, err := s.translator.Translate(r.req)
		if err != nil {
			r.err = err
			return stateResponding
		}
		r.payload = payload
		return stateSigning

	case stateSigning:
		// One timestamp per attempt, reused for both the signature and the
		// Timestamp header; the provider rejects the call if they differ.
		r.timestamp = strconv.FormatInt(s.now().UnixMilli(), 10)
		r.signature = s.signer.Sign(
			r.payload.ClientRequestID,
			r.payload.Choices[0],
			domain.FormatAmount(r.payload.FaceValue.Amount),
			r.payload.FaceValue.Currency,
			r.timestamp,
		)
		return stateCalling

	case stateCalling:
		s.logger.Info("issuing gift card",
			"request_id", r.requestID,
			"client_request_id", r.payload.ClientRequestID,
			"choices", r.payload.Choices,
		)

		body, err := s.provider.Issue(ctx, &domain.SignedRequest{
			Signature: r.signature,
			Timestamp: r.timestamp,
			Payload:   r.payload,
		})
		if err != nil {
			r.err = err
			return stateResponding
		}
		r.body = body
		return stateResponding
	}

	return stateResponding
}

// respond is the terminal state: it normalizes failures and logs the result.
// Logging here must never mask the outcome.
func (s *IssuanceService) respond(r *run) Outcome {
	if r.err != nil {
		status, resp := Normalize(r.err, r.requestID)
		s.logger.Error("gift card request failed",
			"request_id", r.requestID,
			"status", status,
			"error", r.err.Error(),
		)
		return Outcome{Status: status, Err: &resp}
	}

	s.logger.Info("gift card request successful",
		"request_id", r.requestID,
		"client_request_id", r.payload.ClientRequestID,
	)
	return Outcome{Status: http.StatusOK, Body: r.body}
}
