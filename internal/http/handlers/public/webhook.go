package public

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MercadoPagoWebhook receives provider payment notifications.
// Delivery is at least once and unauthenticated, so the body is never
// trusted: the handler acks HTTP 200 on every path and the reason code
// in the diagnostic body says what was done. Returning an error status
// would only make the provider redeliver junk forever.
func (h *Handler) MercadoPagoWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("webhook_body_read_failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true, "reason": "body_unreadable"})
		return
	}
	log.Infow("webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
	)

	result := h.ReconcileService.HandleNotification(c.Request.Context(), body)

	ack := gin.H{"ok": true, "reason": result.Reason}
	if result.PaymentID != "" {
		ack["payment_id"] = result.PaymentID
	}
	if result.OrderNo != "" {
		ack["order_no"] = result.OrderNo
	}
	if result.ProviderStatus != "" {
		ack["provider_status"] = result.ProviderStatus
	}
	c.JSON(http.StatusOK, ack)
}

// MercadoPagoWebhookProbe liveness probe on the webhook path, no side
// effects
func (h *Handler) MercadoPagoWebhookProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
