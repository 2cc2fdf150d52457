// Package signer computes the HMAC authentication digest for provider
// requests from the canonical signature string.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer holds the API key and shared secret established at startup. It is
// immutable and safe for concurrent use.
type Signer struct {
	apiKey string
	secret []byte
}

// New creates a Signer bound to the given credentials.
func New(apiKey, secret string) *Signer {
	return &Signer{
		apiKey: apiKey,
		secret: []byte(secret),
	}
}

// StringToSign builds the canonical signature string. The field order, the
// hyphen separators, and the literal "POST-digital-issue" segment are fixed
// by the provider contract; any deviation invalidates the signature. When the
// caller supplied a list of brands, only the first one is passed here; the
// full list still travels in the payload body.
func (s *Signer) StringToSign(clientRequestID, brand, amount, currency, timestamp string) string {
	return fmt.Sprintf("%s-POST-digital-issue-%s-%s-%s-%s-%s",
		s.apiKey, clientRequestID, brand, amount, currency, timestamp)
}

// Sign computes the lowercase-hex HMAC-SHA256 digest of the canonical string.
// Deterministic for fixed inputs; no I/O. The secret never appears in the
// canonical string and must never be logged.
func (s *Signer) Sign(clientRequestID, brand, amount, currency, timestamp string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(s.StringToSign(clientRequestID, brand, amount, currency, timestamp)))
	return hex.EncodeToString(mac.Sum(nil))
}
