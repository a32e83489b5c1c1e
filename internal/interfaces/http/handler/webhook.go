package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/application/integration"
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/middleware"
)

// signatureHeaders names the HMAC header each platform sends.
var signatureHeaders = map[platform.Code]string{
	platform.CodeUberEats:  "X-Uber-Signature",
	platform.CodeFoodpanda: "X-Panda-Signature",
}

// WebhookHandler receives delivery-platform event notifications.
type WebhookHandler struct {
	BaseHandler
	webhooks    *integration.WebhookService
	maxBodySize int64
	logger      *zap.Logger
}

// NewWebhookHandler creates a webhook handler. maxBodySize caps webhook
// payloads independently of the server-wide body limit; platform events are
// small, so the cap is tight.
func NewWebhookHandler(webhooks *integration.WebhookService, maxBodySize int64, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, maxBodySize: maxBodySize, logger: logger}
}

// RegisterRoutes registers webhook routes. The endpoint is unauthenticated
// on purpose: the HMAC signature is the authentication.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	if h.maxBodySize > 0 {
		rg.POST("/webhooks/:platform", middleware.BodyLimit(h.maxBodySize), h.Receive)
		return
	}
	rg.POST("/webhooks/:platform", h.Receive)
}

// webhookResponse is the acknowledgment body returned to the platform.
type webhookResponse struct {
	Disposition string `json:"disposition"`
	EventID     string `json:"event_id,omitempty"`
}

// Receive handles one webhook delivery. Accepted, duplicate and
// unsupported-type deliveries all acknowledge with 200 so the platform stops
// redelivering; only verification and decoding failures are client errors.
func (h *WebhookHandler) Receive(c *gin.Context) {
	code, ok := parsePlatformCode(c)
	if !ok {
		h.NotFound(c, "Unknown platform")
		return
	}

	// The signature covers the exact bytes on the wire, so the body is read
	// raw before any binding.
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Cannot read request body")
		return
	}

	result, err := h.webhooks.HandleWebhook(c.Request.Context(), code, rawBody, c.GetHeader(signatureHeaders[code]))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, webhookResponse{
		Disposition: string(result.Disposition),
		EventID:     result.EventID,
	})
}
