package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/signature"
)

func signedHeaders(body []byte) map[string]string {
	return map[string]string{
		"X-Uber-Signature": signature.Compute(body, handlerTestSecret),
	}
}

func uberOrderBody(eventID string) []byte {
	return []byte(fmt.Sprintf(`{
		"event_id": %q,
		"event_type": "orders.notification",
		"meta": {"user_id": "uber-store-9", "resource_id": "order-1"},
		"order": {
			"id": "order-1",
			"display_id": "A1",
			"currency_code": "TWD",
			"total": 31000,
			"eater": {"first_name": "Chen"},
			"cart_items": [{"external_id": "item-1", "title": "Dumplings", "quantity": 2, "price": 8000}]
		}
	}`, eventID))
}

func TestWebhookEndpoint_AcceptsSignedDelivery(t *testing.T) {
	f := newAPIFixture(t)
	body := uberOrderBody("evt-http-1")

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, signedHeaders(body))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "accepted", data["disposition"])
	assert.Equal(t, "evt-http-1", data["event_id"])
	assert.Equal(t, 1, f.sink.count())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestWebhookEndpoint_RedeliveryIsDuplicate(t *testing.T) {
	f := newAPIFixture(t)
	body := uberOrderBody("evt-http-2")

	first := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, signedHeaders(body))
	require.Equal(t, http.StatusOK, first.Code)

	second := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, signedHeaders(body))
	require.Equal(t, http.StatusOK, second.Code)

	data := decodeBody(t, second)["data"].(map[string]any)
	assert.Equal(t, "duplicate", data["disposition"])
	assert.Equal(t, 1, f.sink.count())
}

func TestWebhookEndpoint_BadSignatureIs401(t *testing.T) {
	f := newAPIFixture(t)
	body := uberOrderBody("evt-http-3")

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, map[string]string{
		"X-Uber-Signature": signature.Compute(body, "wrong-secret"),
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	errInfo := decodeBody(t, w)["error"].(map[string]any)
	assert.Equal(t, "ERR_SIGNATURE_INVALID", errInfo["code"])
	assert.Zero(t, f.sink.count())
}

func TestWebhookEndpoint_MissingSignatureIs401(t *testing.T) {
	f := newAPIFixture(t)
	body := uberOrderBody("evt-http-4")

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookEndpoint_MalformedEnvelopeIs400(t *testing.T) {
	f := newAPIFixture(t)
	body := []byte(`{"event_type": "orders.notification"}`)

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, signedHeaders(body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	errInfo := decodeBody(t, w)["error"].(map[string]any)
	assert.Equal(t, "ERR_EVENT_MALFORMED", errInfo["code"])
}

func TestWebhookEndpoint_UnknownEventTypeIsAcknowledged(t *testing.T) {
	f := newAPIFixture(t)
	body := []byte(`{"event_id": "evt-http-5", "event_type": "robot.delivery_started"}`)

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, signedHeaders(body))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "acknowledged", data["disposition"])
	assert.Zero(t, f.sink.count())
}

func TestWebhookEndpoint_UnknownPlatformIs404(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/GRABFOOD", []byte(`{}`), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookEndpoint_OversizedBodyIs413(t *testing.T) {
	f := newAPIFixture(t)
	huge := make([]byte, 2<<20)

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", huge, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestWebhookEndpoint_WebhookBodyCapIsTighterThanServerCap(t *testing.T) {
	f := newAPIFixture(t)
	// Over the webhook route's cap, under the server-wide limit.
	body := make([]byte, handlerTestWebhookBodyLimit+1)

	w := f.do(t, http.MethodPost, "/api/v1/webhooks/UBEREATS", body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// Other routes still get the looser server-wide limit.
	w = f.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
