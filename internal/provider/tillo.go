package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/relayworks/giftcard-relay/internal/config"
	"github.com/relayworks/giftcard-relay/internal/domain"
)

// TilloClient implements domain.GiftCardProvider against the Tillo digital
// issue endpoint. One outbound call per Issue invocation, no retries, no
// caching; the configured timeout bounds every attempt.
type TilloClient struct {
	client *http.Client
	url    string
	apiKey string
}

// NewTilloClient creates a TilloClient from provider configuration.
func NewTilloClient(cfg config.TilloConfig) *TilloClient {
	return &TilloClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
	}
}

// Issue sends the signed payload and returns the provider's success body
// verbatim. Non-2xx responses come back as *domain.ProviderError carrying the
// status, the parsed error_code when present, and the raw body; failures with
// no response at all come back as *domain.TransportError.
func (c *TilloClient) Issue(ctx context.Context, req *domain.SignedRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("API-Key", c.apiKey)
	httpReq.Header.Set("Signature", req.Signature)
	httpReq.Header.Set("Timestamp", req.Timestamp)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		provErr := &domain.ProviderError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
		}
		var envelope struct {
			ErrorCode string `json:"error_code"`
		}
		if json.Unmarshal(respBody, &envelope) == nil {
			provErr.Code = envelope.ErrorCode
		}
		return nil, provErr
	}

	return respBody, nil
}
