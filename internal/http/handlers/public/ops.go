package public

import (
	"strconv"
	"strings"

	"github.com/plpainel/tokenapi/internal/http/response"
	"github.com/plpainel/tokenapi/internal/repository"

	"github.com/gin-gonic/gin"
)

// ReconcileReplay re-drives reconciliation for a payment id.
// Operator tool: safe to call on any payment, any number of times.
func (h *Handler) ReconcileReplay(c *gin.Context) {
	paymentID := strings.TrimSpace(c.Param("payment_id"))
	if paymentID == "" {
		response.BadRequest(c, "payment_id required")
		return
	}
	requestLog(c).Infow("manual_reconcile_requested", "payment_id", paymentID)
	result := h.ReconcileService.Reconcile(c.Request.Context(), paymentID)
	response.Success(c, result)
}

// ListWebhookEvents lists recorded webhook deliveries for
// investigation
func (h *Handler) ListWebhookEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	events, total, err := h.WebhookEventRepo.List(repository.WebhookEventListFilter{
		Page:      page,
		PageSize:  pageSize,
		PaymentID: strings.TrimSpace(c.Query("payment_id")),
		Outcome:   strings.TrimSpace(c.Query("outcome")),
	})
	if err != nil {
		requestLog(c).Errorw("webhook_event_list_failed", "error", err)
		response.Internal(c, "webhook event list failed")
		return
	}
	response.SuccessWithPage(c, events, response.NewPagination(page, pageSize, total))
}
