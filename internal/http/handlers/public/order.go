package public

import (
	"errors"
	"strconv"

	"github.com/plpainel/tokenapi/internal/http/response"
	"github.com/plpainel/tokenapi/internal/repository"
	"github.com/plpainel/tokenapi/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest order intake request
type CreateOrderRequest struct {
	UserID   uint  `json:"user_id" binding:"required"`
	Quantity int64 `json:"quantity" binding:"required"`
}

// CreateOrder creates a pending token order
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:   req.UserID,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo polls an order by its number. user_id narrows the
// lookup to that user's orders.
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	orderNo := c.Param("order_no")
	userID := queryUint(c, "user_id")
	order, err := h.OrderService.GetOrderByNo(orderNo, userID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders lists a user's orders
func (h *Handler) ListOrders(c *gin.Context) {
	userID := queryUint(c, "user_id")
	if userID == 0 {
		response.BadRequest(c, "user_id required")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   c.Query("status"),
	})
	if err != nil {
		requestLog(c).Errorw("order_list_failed", "user_id", userID, "error", err)
		response.Internal(c, "list orders failed")
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetUserBalance returns a user's token balance
func (h *Handler) GetUserBalance(c *gin.Context) {
	userID := paramUint(c, "user_id")
	if userID == 0 {
		response.BadRequest(c, "user_id invalid")
		return
	}
	balance, err := h.OrderService.GetBalance(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		requestLog(c).Errorw("balance_read_failed", "user_id", userID, "error", err)
		response.Internal(c, "balance read failed")
		return
	}
	response.Success(c, gin.H{"user_id": userID, "balance": balance})
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, "order not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, service.ErrOrderInvalid):
		response.BadRequest(c, err.Error())
	default:
		requestLog(c).Errorw("order_request_failed", "error", err)
		response.Internal(c, "order request failed")
	}
}

func paramUint(c *gin.Context, key string) uint {
	value, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}

func queryUint(c *gin.Context, key string) uint {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
