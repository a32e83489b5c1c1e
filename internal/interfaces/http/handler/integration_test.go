package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/health", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "test", data["version"])
}

func TestProvisionEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	body := []byte(fmt.Sprintf(`{"user_access_token": "one-shot", "store_id": %q}`, f.storeID))

	w := f.do(t, http.MethodPost, "/api/v1/integration/platforms/UBEREATS/provision", body,
		map[string]string{"X-Tenant-ID": f.tenant.String()})

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "UBEREATS", data["platform"])
	assert.Equal(t, "remote-1", data["platform_store_id"])
}

func TestProvisionEndpoint_RequiresTenant(t *testing.T) {
	f := newAPIFixture(t)
	body := []byte(fmt.Sprintf(`{"user_access_token": "one-shot", "store_id": %q}`, f.storeID))

	w := f.do(t, http.MethodPost, "/api/v1/integration/platforms/UBEREATS/provision", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProvisionEndpoint_MissingTokenIs400(t *testing.T) {
	f := newAPIFixture(t)
	body := []byte(fmt.Sprintf(`{"store_id": %q}`, f.storeID))

	w := f.do(t, http.MethodPost, "/api/v1/integration/platforms/UBEREATS/provision", body,
		map[string]string{"X-Tenant-ID": f.tenant.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisconnectEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodDelete, "/api/v1/integration/platforms/UBEREATS", nil,
		map[string]string{"X-Tenant-ID": f.tenant.String()})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRotateSecretEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/integration/platforms/UBEREATS/secret",
		[]byte(`{"secret": "next-secret"}`), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/integration/platforms/UBEREATS/secret",
		[]byte(`{"secret": ""}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncEndpoint_FanOut(t *testing.T) {
	f := newAPIFixture(t)
	f.seedLink(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/integration/stores/%s/sync", f.storeID),
		[]byte(`{"operation": "menu"}`), nil)

	require.Equal(t, http.StatusOK, w.Code)
	results := decodeBody(t, w)["data"].([]any)
	require.Len(t, results, 1)
	result := results[0].(map[string]any)
	assert.Equal(t, "UBEREATS", result["platform"])
	assert.Equal(t, "SUCCESS", result["outcome"])
	assert.Equal(t, float64(1), result["attempts"])
}

func TestSyncEndpoint_SinglePlatform(t *testing.T) {
	f := newAPIFixture(t)
	f.seedLink(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/integration/stores/%s/sync", f.storeID),
		[]byte(`{"operation": "status", "platform": "UBEREATS"}`), nil)

	require.Equal(t, http.StatusOK, w.Code)
	results := decodeBody(t, w)["data"].([]any)
	require.Len(t, results, 1)
}

func TestSyncEndpoint_UnknownOperation(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/integration/stores/%s/sync", f.storeID),
		[]byte(`{"operation": "teleport"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncStatusEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.seedLink(t)

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/integration/stores/%s/sync-status", f.storeID), nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	statuses := decodeBody(t, w)["data"].([]any)
	require.Len(t, statuses, 1)
	status := statuses[0].(map[string]any)
	assert.Equal(t, "UBEREATS", status["platform"])
	assert.Equal(t, true, status["sync_enabled"])
}

func TestUpdateLinkEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.seedLink(t)

	w := f.do(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/integration/stores/%s/links/UBEREATS", f.storeID),
		[]byte(`{"status": "BUSY", "prep_time_minutes": 40, "auto_accept": true}`), nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "BUSY", data["status"])
	assert.Equal(t, float64(40), data["prep_time_minutes"])
	assert.Equal(t, true, data["auto_accept"])
}

func TestUpdateLinkEndpoint_UnknownLinkIs404(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/integration/stores/%s/links/UBEREATS", uuid.New()),
		[]byte(`{"auto_accept": true}`), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
