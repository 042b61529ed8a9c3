package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/plpainel/tokenapi/internal/constants"
	"github.com/plpainel/tokenapi/internal/models"

	"gorm.io/gorm"
)

// OrderRepository token order data access.
// MarkPaid and MarkFailed are single conditional updates keyed on the
// current status, so concurrent callers racing on the same order get
// exactly one winner.
type OrderRepository interface {
	Create(order *models.TokenOrder) error
	GetByID(id uint) (*models.TokenOrder, error)
	GetByOrderNo(orderNo string) (*models.TokenOrder, error)
	RecordProviderStatus(id uint, providerPaymentID, providerStatus string) error
	MarkPaid(id uint, paidAt time.Time) (bool, error)
	MarkFailed(id uint) (bool, error)
	ListByUser(filter OrderListFilter) ([]models.TokenOrder, int64, error)
	ListPaidWithoutCredit(limit int) ([]models.TokenOrder, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM implementation
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the order repository
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds a transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create creates a pending order
func (r *GormOrderRepository) Create(order *models.TokenOrder) error {
	return r.db.Create(order).Error
}

// GetByID fetches an order by id
func (r *GormOrderRepository) GetByID(id uint) (*models.TokenOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.TokenOrder
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo fetches an order by its external reference
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.TokenOrder, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.TokenOrder
	if err := r.db.Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// RecordProviderStatus updates the provider mirror fields.
// Always allowed, even on a terminal order; the order's own status is
// untouched.
func (r *GormOrderRepository) RecordProviderStatus(id uint, providerPaymentID, providerStatus string) error {
	if id == 0 {
		return nil
	}
	updates := map[string]interface{}{
		"provider_status": strings.TrimSpace(providerStatus),
		"updated_at":      time.Now(),
	}
	if trimmed := strings.TrimSpace(providerPaymentID); trimmed != "" {
		updates["provider_payment_id"] = trimmed
	}
	return r.db.Model(&models.TokenOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkPaid transitions pending → paid.
// Returns true only for the single caller whose conditional update
// matched; everyone else sees the order already resolved.
func (r *GormOrderRepository) MarkPaid(id uint, paidAt time.Time) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.TokenOrder{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     constants.OrderStatusPaid,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkFailed transitions pending → failed.
// A no-op when the order is already paid or failed; payment finality
// wins over a late definitive non-payment status.
func (r *GormOrderRepository) MarkFailed(id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.TokenOrder{}).
		Where("id = ? AND status = ?", id, constants.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     constants.OrderStatusFailed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByUser lists a user's orders
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.TokenOrder, int64, error) {
	query := r.db.Model(&models.TokenOrder{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.TokenOrder
	if err := query.Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListPaidWithoutCredit finds paid orders missing their credit record.
// This is the observable "money collected, tokens not delivered" gap.
func (r *GormOrderRepository) ListPaidWithoutCredit(limit int) ([]models.TokenOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []models.TokenOrder
	err := r.db.Model(&models.TokenOrder{}).
		Joins("LEFT JOIN token_transactions ON token_transactions.order_id = token_orders.id").
		Where("token_orders.status = ? AND token_transactions.id IS NULL", constants.OrderStatusPaid).
		Order("token_orders.id asc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
