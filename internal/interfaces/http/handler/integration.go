package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/application/integration"
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// IntegrationHandler exposes platform provisioning, link administration and
// sync control to operator tooling.
type IntegrationHandler struct {
	BaseHandler
	provisioning *integration.ProvisioningService
	sync         *integration.SyncService
	logger       *zap.Logger
}

// NewIntegrationHandler creates an integration admin handler.
func NewIntegrationHandler(provisioning *integration.ProvisioningService, sync *integration.SyncService, logger *zap.Logger) *IntegrationHandler {
	return &IntegrationHandler{provisioning: provisioning, sync: sync, logger: logger}
}

// RegisterRoutes registers integration admin routes.
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/integration")
	{
		group.POST("/platforms/:platform/provision", h.Provision)
		group.DELETE("/platforms/:platform", h.Disconnect)
		group.POST("/platforms/:platform/secret", h.RotateSecret)
		group.POST("/stores/:storeId/sync", h.Sync)
		group.GET("/stores/:storeId/sync-status", h.SyncStatus)
		group.PATCH("/stores/:storeId/links/:platform", h.UpdateLink)
	}
}

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

// ProvisionRequest starts the connection of a store to a platform.
type ProvisionRequest struct {
	// UserAccessToken is the one-shot token from the platform's
	// authorization flow. It is spent by this call.
	UserAccessToken string `json:"user_access_token" binding:"required"`
	StoreID         string `json:"store_id" binding:"required,uuid"`
}

// ProvisionResponse reports the created connection.
type ProvisionResponse struct {
	Platform        string    `json:"platform"`
	CredentialState string    `json:"credential_state"`
	PlatformStoreID string    `json:"platform_store_id"`
	TokenExpiresAt  time.Time `json:"token_expires_at"`
}

// Provision connects a tenant's store to a delivery platform.
func (h *IntegrationHandler) Provision(c *gin.Context) {
	code, ok := parsePlatformCode(c)
	if !ok {
		h.NotFound(c, "Unknown platform")
		return
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		h.BadRequest(c, "Invalid store id")
		return
	}

	cred, link, err := h.provisioning.Provision(c.Request.Context(), tenantID, code, req.UserAccessToken, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ProvisionResponse{
		Platform:        code.String(),
		CredentialState: string(cred.State),
		PlatformStoreID: link.PlatformStoreID,
		TokenExpiresAt:  cred.AppTokenExpiresAt,
	})
}

// Disconnect revokes the tenant's platform credential and removes its links.
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	code, ok := parsePlatformCode(c)
	if !ok {
		h.NotFound(c, "Unknown platform")
		return
	}
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	if err := h.provisioning.Disconnect(c.Request.Context(), tenantID, code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RotateSecretRequest installs a new webhook signing secret.
type RotateSecretRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// RotateSecret installs a new webhook signing secret for a platform. The
// previous secret keeps verifying until the rotation window closes.
func (h *IntegrationHandler) RotateSecret(c *gin.Context) {
	code, ok := parsePlatformCode(c)
	if !ok {
		h.NotFound(c, "Unknown platform")
		return
	}

	var req RotateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.provisioning.RotateSecret(code, req.Secret); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ---------------------------------------------------------------------------
// Sync
// ---------------------------------------------------------------------------

// SyncRequest triggers an outbound push.
type SyncRequest struct {
	// Operation is one of menu, inventory, status.
	Operation string `json:"operation" binding:"required"`
	// Platform restricts the push to a single platform; empty fans out to
	// every enabled link.
	Platform string `json:"platform"`
}

// SyncResultResponse is one per-platform outcome.
type SyncResultResponse struct {
	Platform    string    `json:"platform"`
	Outcome     string    `json:"outcome"`
	Attempts    int       `json:"attempts"`
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// Sync pushes the requested operation to the store's platforms. Partial
// failure is reported per platform in a 200 response.
func (h *IntegrationHandler) Sync(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		h.BadRequest(c, "Invalid store id")
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	op := platform.SyncOperation(req.Operation)
	if !op.IsValid() {
		h.BadRequest(c, "Unknown sync operation")
		return
	}

	var results []platform.SyncAttemptResult
	if req.Platform != "" {
		code, ok := platform.ParseCode(req.Platform)
		if !ok {
			h.NotFound(c, "Unknown platform")
			return
		}
		result, err := h.sync.SyncOne(c.Request.Context(), storeID, code, op)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		results = append(results, result)
	} else {
		byPlatform, err := h.sync.SyncAll(c.Request.Context(), storeID, op)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		for _, result := range byPlatform {
			results = append(results, result)
		}
	}

	out := make([]SyncResultResponse, 0, len(results))
	for _, result := range results {
		out = append(out, SyncResultResponse{
			Platform:    result.PlatformCode.String(),
			Outcome:     result.Outcome.String(),
			Attempts:    result.Attempts,
			Error:       result.ErrorDetail,
			CompletedAt: result.CompletedAt,
		})
	}
	h.Success(c, out)
}

// SyncStatus reports the per-platform link health for a store.
func (h *IntegrationHandler) SyncStatus(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		h.BadRequest(c, "Invalid store id")
		return
	}

	statuses, err := h.sync.GetSyncStatus(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statuses)
}

// ---------------------------------------------------------------------------
// Link administration
// ---------------------------------------------------------------------------

// UpdateLinkRequest carries optional link toggles; omitted fields stay
// untouched.
type UpdateLinkRequest struct {
	Status          *string `json:"status"`
	PrepTimeMinutes *int    `json:"prep_time_minutes"`
	AutoAccept      *bool   `json:"auto_accept"`
	SyncEnabled     *bool   `json:"sync_enabled"`
}

// LinkResponse is the operator view of one store link.
type LinkResponse struct {
	Platform        string `json:"platform"`
	PlatformStoreID string `json:"platform_store_id"`
	Status          string `json:"status"`
	PrepTimeMinutes int    `json:"prep_time_minutes"`
	AutoAccept      bool   `json:"auto_accept"`
	SyncEnabled     bool   `json:"sync_enabled"`
}

// UpdateLink applies admin toggles to one store link.
func (h *IntegrationHandler) UpdateLink(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		h.BadRequest(c, "Invalid store id")
		return
	}
	code, ok := parsePlatformCode(c)
	if !ok {
		h.NotFound(c, "Unknown platform")
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	update := integration.LinkUpdate{
		PrepTime:    req.PrepTimeMinutes,
		AutoAccept:  req.AutoAccept,
		SyncEnabled: req.SyncEnabled,
	}
	if req.Status != nil {
		status := platform.StoreStatus(*req.Status)
		update.Status = &status
	}

	link, err := h.provisioning.UpdateLink(c.Request.Context(), storeID, code, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LinkResponse{
		Platform:        link.PlatformCode.String(),
		PlatformStoreID: link.PlatformStoreID,
		Status:          link.Status.String(),
		PrepTimeMinutes: link.PrepTimeMinutes,
		AutoAccept:      link.AutoAccept,
		SyncEnabled:     link.SyncEnabled,
	})
}
