// Package translator validates inbound issuance requests and translates them
// into the provider's wire payload.
package translator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/relayworks/giftcard-relay/internal/domain"
)

// Translator validates and normalizes caller requests. Safe for concurrent
// use; the embedded validator caches struct metadata internally.
type Translator struct {
	validate *validator.Validate
}

// New creates a Translator. Field names in validation errors come from the
// struct's JSON tags so they match what the caller actually sent.
func New() *Translator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonTagName)
	return &Translator{validate: v}
}

// Translate checks every field constraint and, when all pass, builds the
// provider payload with defaults applied. All violations are reported
// together in a single domain.ValidationErrors value; a failing request must
// never reach the signer or the provider client.
func (t *Translator) Translate(req *domain.IssuanceRequest) (*domain.ProviderRequest, error) {
	var errs []domain.ValidationError

	if err := t.validate.Struct(req); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("validating request: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, domain.NewValidationError(fe.Field(), fieldMessage(fe)))
		}
	}

	errs = append(errs, validateFulfilment(req.FulfilmentParameters)...)

	if len(errs) > 0 {
		return nil, domain.ValidationErrors{Errors: errs}
	}

	out := &domain.ProviderRequest{
		ClientRequestID: req.ClientRequestID,
		Choices:         []string(req.BrandIdentifier),
		FaceValue: domain.FaceValue{
			Amount:   *req.Amount,
			Currency: defaultString(req.Currency, domain.DefaultCurrency),
		},
		DeliveryMethod: defaultString(req.DeliveryMethod, domain.DefaultDeliveryMethod),
		FulfilmentBy:   defaultString(req.FulfilmentBy, domain.DefaultFulfilmentBy),
		Sector:         defaultString(req.Sector, domain.DefaultSector),
	}

	// Omission, not null: the key only appears when the caller sent it.
	if req.FulfilmentParameters != nil {
		out.FulfilmentParameters = req.FulfilmentParameters
	}

	return out, nil
}

// validateFulfilment enforces the required recipient sub-fields whenever
// fulfilment parameters are present at all. The object itself is optional.
func validateFulfilment(params domain.FulfilmentParameters) []domain.ValidationError {
	if params == nil {
		return nil
	}

	var errs []domain.ValidationError
	for _, field := range domain.RequiredFulfilmentFields {
		if s, ok := params[field].(string); !ok || s == "" {
			errs = append(errs, domain.NewValidationError(
				"fulfilmentParameters."+field,
				fmt.Sprintf("fulfilmentParameters.%s is required", field),
			))
		}
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gt":
		return fe.Field() + " must be a positive number"
	case "min":
		return fe.Field() + " must not be empty"
	case "iso4217":
		return fe.Field() + " must be a valid ISO 4217 currency code"
	default:
		return fe.Field() + " is invalid"
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
