package public

import (
	"errors"
	"strconv"

	"github.com/plpainel/tokenapi/internal/http/response"
	"github.com/plpainel/tokenapi/internal/service"

	"github.com/gin-gonic/gin"
)

// AttachReferralRequest referral attach request
type AttachReferralRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

// AttachReferral binds a captured affiliate code to a user
func (h *Handler) AttachReferral(c *gin.Context) {
	var req AttachReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	referral, err := h.AffiliateService.AttachReferral(req.UserID, req.Code)
	switch {
	case err == nil:
		response.Success(c, referral)
	case errors.Is(err, service.ErrReferralExists):
		// First attribution wins; returning the existing row keeps the
		// endpoint idempotent for retrying clients.
		response.Success(c, referral)
	case errors.Is(err, service.ErrSelfReferral):
		response.Error(c, response.CodeConflict, "self referral not allowed")
	case errors.Is(err, service.ErrReferralCodeInvalid):
		response.BadRequest(c, "referral code invalid")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "user not found")
	default:
		requestLog(c).Errorw("referral_attach_failed", "user_id", req.UserID, "error", err)
		response.Internal(c, "referral attach failed")
	}
}

// ListCommissions lists an affiliate's commissions
func (h *Handler) ListCommissions(c *gin.Context) {
	affiliateUserID := paramUint(c, "user_id")
	if affiliateUserID == 0 {
		response.BadRequest(c, "user_id invalid")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	items, total, err := h.AffiliateService.ListCommissions(affiliateUserID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrAffiliateNotFound) {
			response.NotFound(c, "affiliate not found")
			return
		}
		requestLog(c).Errorw("commission_list_failed", "affiliate_user_id", affiliateUserID, "error", err)
		response.Internal(c, "commission list failed")
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}
