package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Default values applied during translation when the caller omits a field.
const (
	DefaultDeliveryMethod = "url"
	DefaultFulfilmentBy   = "partner"
	DefaultSector         = "marketplace"
	DefaultCurrency       = "USD"
)

// BrandChoices holds the caller's brand identifier(s). The inbound contract
// accepts either a single brand code or an ordered list of candidates; both
// decode into the list form. The first element is the one that participates
// in request signing.
type BrandChoices []string

// UnmarshalJSON accepts a JSON string or an array of strings. An empty
// scalar is no brand at all and decodes to nil, so validation reports the
// field as missing.
func (b *BrandChoices) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*b = nil
			return nil
		}
		*b = BrandChoices{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("brandIdentifier must be a string or array of strings")
	}
	*b = BrandChoices(list)
	return nil
}

// First returns the brand code used for signing, or "" when empty.
func (b BrandChoices) First() string {
	if len(b) == 0 {
		return ""
	}
	return b[0]
}

// FulfilmentParameters carries recipient delivery details. The object passes
// through to the provider verbatim, extra keys included, so it is modeled as
// a raw map rather than a closed struct.
type FulfilmentParameters map[string]any

// RequiredFulfilmentFields are the sub-fields that must be present and
// non-empty whenever fulfilment parameters are supplied at all.
var RequiredFulfilmentFields = []string{
	"to_first_name",
	"to_last_name",
	"address_1",
	"city",
	"postal_code",
	"country",
}

// IssuanceRequest is the caller-facing request shape. Amount is a pointer so
// that a missing field is distinguishable from zero.
type IssuanceRequest struct {
	Amount               *float64             `json:"amount" validate:"required,gt=0"`
	BrandIdentifier      BrandChoices         `json:"brandIdentifier" validate:"required,min=1"`
	ClientRequestID      string               `json:"clientRequestId" validate:"required"`
	DeliveryMethod       string               `json:"deliveryMethod,omitempty"`
	FulfilmentBy         string               `json:"fulfilmentBy,omitempty"`
	Sector               string               `json:"sector,omitempty"`
	Currency             string               `json:"currency,omitempty" validate:"omitempty,iso4217"`
	FulfilmentParameters FulfilmentParameters `json:"fulfilmentParameters,omitempty"`
}

// FaceValue is the monetary amount and currency of the card being issued.
type FaceValue struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ProviderRequest is the translated wire payload sent to the provider.
type ProviderRequest struct {
	ClientRequestID      string               `json:"client_request_id"`
	Choices              []string             `json:"choices"`
	FaceValue            FaceValue            `json:"face_value"`
	DeliveryMethod       string               `json:"delivery_method"`
	FulfilmentBy         string               `json:"fulfilment_by"`
	Sector               string               `json:"sector"`
	FulfilmentParameters FulfilmentParameters `json:"fulfilment_parameters,omitempty"`
}

// SignedRequest is a translated payload together with the authentication
// material for one attempt. Timestamp must be the same value used to compute
// Signature; the provider rejects the call otherwise.
type SignedRequest struct {
	Signature string
	Timestamp string
	Payload   *ProviderRequest
}

// FormatAmount serializes an amount the way it appears in both the canonical
// signature string and the JSON body: shortest decimal that round-trips, so
// 10.00 becomes "10" and 10.50 becomes "10.5". The signature and the payload
// must never disagree on this.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
