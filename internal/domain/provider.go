package domain

import (
	"context"
	"encoding/json"
)

// GiftCardProvider issues one gift card against the external provider.
type GiftCardProvider interface {
	// Issue performs a single signed request/response exchange and returns
	// the provider's success body verbatim. Failures are *ProviderError
	// (non-2xx response) or *TransportError (no response).
	Issue(ctx context.Context, req *SignedRequest) (json.RawMessage, error)
}
