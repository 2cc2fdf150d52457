package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayworks/giftcard-relay/internal/config"
	"github.com/relayworks/giftcard-relay/internal/middleware"
	"github.com/relayworks/giftcard-relay/internal/provider"
	"github.com/relayworks/giftcard-relay/internal/service"
	"github.com/relayworks/giftcard-relay/internal/signer"
	"github.com/relayworks/giftcard-relay/internal/translator"
)

// newTestRouter wires the real pipeline against the given fake provider URL,
// with the clock pinned to the known signature fixture.
func newTestRouter(t *testing.T, providerURL string) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tillo := provider.NewTilloClient(config.TilloConfig{
		URL:     providerURL,
		APIKey:  "K",
		Secret:  "S",
		Timeout: 2 * time.Second,
	})

	svc := service.NewIssuanceService(translator.New(), signer.New("K", "S"), tillo, logger)
	svc.SetNow(func() time.Time { return time.UnixMilli(1700000000000) })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Post("/api/issue-gift-card", NewIssuanceHandler(svc, nil).Issue)
	return r
}

func postIssue(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/issue-gift-card", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIssueEndpoint_Success(t *testing.T) {
	var gotSignature, gotTimestamp string
	var gotBody []byte

	fakeProvider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("Signature")
		gotTimestamp = r.Header.Get("Timestamp")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"code":"ISSUED","url":"https://cards.example/abc"}`))
	}))
	defer fakeProvider.Close()

	router := newTestRouter(t, fakeProvider.URL)

	rec := postIssue(t, router, `{
		"amount": 10.00,
		"brandIdentifier": ["brand-x"],
		"clientRequestId": "req-1",
		"currency": "USD"
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Provider success body passes through verbatim.
	assert.Equal(t, `{"code":"ISSUED","url":"https://cards.example/abc"}`, rec.Body.String())

	assert.Equal(t, "1700000000000", gotTimestamp)
	assert.Equal(t, "3fba8c705eb9ae51fb7ad0877cf719485290fbc433cdd1b08d04280c80546952", gotSignature)
	assert.JSONEq(t, `{
		"client_request_id": "req-1",
		"choices": ["brand-x"],
		"face_value": {"amount": 10, "currency": "USD"},
		"delivery_method": "url",
		"fulfilment_by": "partner",
		"sector": "marketplace"
	}`, string(gotBody))
}

func TestIssueEndpoint_ScalarBrandEqualsList(t *testing.T) {
	var signatures []string
	fakeProvider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signatures = append(signatures, r.Header.Get("Signature"))
		w.Write([]byte(`{}`))
	}))
	defer fakeProvider.Close()

	router := newTestRouter(t, fakeProvider.URL)

	for _, brand := range []string{`"foo"`, `["foo"]`} {
		rec := postIssue(t, router, `{"amount": 10, "brandIdentifier": `+brand+`, "clientRequestId": "req-1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, signatures, 2)
	assert.Equal(t, signatures[0], signatures[1])
}

func TestIssueEndpoint_ValidationFailure(t *testing.T) {
	var providerCalls int
	fakeProvider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerCalls++
	}))
	defer fakeProvider.Close()

	router := newTestRouter(t, fakeProvider.URL)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			"missing amount",
			`{"brandIdentifier": "brand-x", "clientRequestId": "req-1"}`,
			"amount is required",
		},
		{
			"missing brand identifier",
			`{"amount": 10, "clientRequestId": "req-1"}`,
			"brandIdentifier is required",
		},
		{
			"empty string brand identifier",
			`{"amount": 10, "brandIdentifier": "", "clientRequestId": "req-1"}`,
			"brandIdentifier is required",
		},
		{
			"missing client request id",
			`{"amount": 10, "brandIdentifier": "brand-x"}`,
			"clientRequestId is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postIssue(t, router, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"Validation failed"`)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Contains(t, rec.Body.String(), `"requestId"`)
		})
	}

	assert.Equal(t, 0, providerCalls, "validation failures must never reach the provider")
}

func TestIssueEndpoint_ProviderRejection(t *testing.T) {
	fakeProvider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error_code":"INSUFFICIENT_FUNDS"}`))
	}))
	defer fakeProvider.Close()

	router := newTestRouter(t, fakeProvider.URL)

	rec := postIssue(t, router, `{"amount": 10, "brandIdentifier": "brand-x", "clientRequestId": "req-1"}`)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Insufficient funds for this transaction"`)
	assert.Contains(t, rec.Body.String(), `"error_code":"INSUFFICIENT_FUNDS"`)
	assert.Contains(t, rec.Body.String(), `"requestId"`)
}

func TestIssueEndpoint_TransportFailure(t *testing.T) {
	fakeProvider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	fakeProvider.Close()

	router := newTestRouter(t, fakeProvider.URL)

	rec := postIssue(t, router, `{"amount": 10, "brandIdentifier": "brand-x", "clientRequestId": "req-1"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Failed to process gift card request"`)
}

func TestIssueEndpoint_MalformedBody(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	rec := postIssue(t, router, `{"amount": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Validation failed"`)
}

func TestIssueEndpoint_RequestIDHeaderEchoed(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	rec := postIssue(t, router, `{}`)

	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}
