package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/plpainel/tokenapi/internal/config"
	"github.com/plpainel/tokenapi/internal/constants"
	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/models"
	"github.com/plpainel/tokenapi/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService token order intake and queries
type OrderService struct {
	orderRepo   repository.OrderRepository
	balanceRepo repository.BalanceRepository
	userRepo    repository.UserRepository
	cfg         config.OrderConfig
}

// NewOrderService creates the order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	balanceRepo repository.BalanceRepository,
	userRepo repository.UserRepository,
	cfg config.OrderConfig,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		balanceRepo: balanceRepo,
		userRepo:    userRepo,
		cfg:         cfg,
	}
}

// CreateOrderInput order intake input
type CreateOrderInput struct {
	UserID   uint
	Quantity int64
}

// CreateOrder creates a pending token order. The order number doubles
// as the provider's external reference, so it must be unique and
// opaque; checkout hands it to the provider when creating the charge.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.TokenOrder, error) {
	if input.UserID == 0 {
		return nil, ErrUserNotFound
	}
	minTokens := s.cfg.MinTokens
	if minTokens <= 0 {
		minTokens = 1
	}
	if input.Quantity < minTokens {
		return nil, fmt.Errorf("%w: quantity below minimum %d", ErrOrderInvalid, minTokens)
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status != constants.UserStatusActive {
		return nil, fmt.Errorf("%w: user disabled", ErrOrderInvalid)
	}

	unitPrice := decimal.NewFromInt(s.cfg.UnitPriceCents).Div(decimal.NewFromInt(100))
	amount := unitPrice.Mul(decimal.NewFromInt(input.Quantity))
	currency := strings.ToUpper(strings.TrimSpace(s.cfg.Currency))
	if currency == "" {
		currency = "BRL"
	}

	now := time.Now()
	order := &models.TokenOrder{
		OrderNo:   generateOrderNo(),
		UserID:    input.UserID,
		Quantity:  input.Quantity,
		UnitPrice: models.NewMoneyFromDecimal(unitPrice),
		Amount:    models.NewMoneyFromDecimal(amount),
		Currency:  currency,
		Status:    constants.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orderRepo.Create(order); err != nil {
		orderLogger("user_id", input.UserID).Errorw("order_create_failed", "error", err)
		return nil, ErrOrderCreateFailed
	}
	orderLogger(
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"quantity", order.Quantity,
		"amount", order.Amount.String(),
	).Infow("order_created")
	return order, nil
}

// GetOrderByNo fetches an order for polling. When userID is non-zero
// the order must belong to that user.
func (s *OrderService) GetOrderByNo(orderNo string, userID uint) (*models.TokenOrder, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if userID != 0 && order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders lists a user's orders
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.TokenOrder, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// GetBalance returns a user's token balance; zero when no row exists
func (s *OrderService) GetBalance(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrUserNotFound
	}
	balance, err := s.balanceRepo.GetByUserID(userID)
	if err != nil {
		return 0, err
	}
	if balance == nil {
		return 0, nil
	}
	return balance.Balance, nil
}

// generateOrderNo builds an opaque unique order number
func generateOrderNo() string {
	return fmt.Sprintf("TKO-%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:24])
}

func orderLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}
