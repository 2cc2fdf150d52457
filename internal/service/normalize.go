package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/relayworks/giftcard-relay/internal/domain"
)

// providerErrorMessages maps recognized provider error codes to stable
// human-readable messages. Unrecognized codes fall through to the generic
// failure message with the raw provider detail attached.
var providerErrorMessages = map[string]string{
	"INVALID_SIGNATURE":   "The provided signature is invalid",
	"INVALID_TIMESTAMP":   "The timestamp is invalid or expired",
	"INSUFFICIENT_FUNDS":  "Insufficient funds for this transaction",
	"BRAND_NOT_AVAILABLE": "The requested brand is not available",
	"INVALID_FACE_VALUE":  "The face value is invalid for this brand",
}

const genericFailureMessage = "Failed to process gift card request"

// ErrorResponse is the uniform error envelope returned to callers. RequestID
// is the locally generated correlation id, independent of the caller's
// clientRequestId.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId"`
}

// Normalize classifies a pipeline failure into the local error taxonomy and
// produces the HTTP status and envelope to return.
func Normalize(err error, requestID string) (int, ErrorResponse) {
	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, ErrorResponse{
			Error:     "Validation failed",
			Details:   validationErrs.Messages(),
			RequestID: requestID,
		}
	}

	var validationErr domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, ErrorResponse{
			Error:     "Validation failed",
			Details:   []string{validationErr.Message},
			RequestID: requestID,
		}
	}

	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		if msg, ok := providerErrorMessages[provErr.Code]; ok {
			return provErr.StatusCode, ErrorResponse{
				Error:     msg,
				ErrorCode: provErr.Code,
				RequestID: requestID,
			}
		}
		return provErr.StatusCode, ErrorResponse{
			Error:     genericFailureMessage,
			Details:   rawDetail(provErr.Body),
			RequestID: requestID,
		}
	}

	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:     genericFailureMessage,
			Details:   transportErr.Err.Error(),
			RequestID: requestID,
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:     genericFailureMessage,
		Details:   err.Error(),
		RequestID: requestID,
	}
}

// rawDetail echoes the provider body as-is when it is valid JSON, falling
// back to a plain string so the envelope always marshals.
func rawDetail(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
