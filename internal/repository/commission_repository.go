package repository

import (
	"errors"

	"github.com/plpainel/tokenapi/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository commission data access
type CommissionRepository interface {
	CreateIfAbsent(commission *models.Commission) (bool, error)
	GetByOrderID(orderID uint) (*models.Commission, error)
	ListByAffiliate(affiliateUserID uint, page, pageSize int) ([]models.Commission, int64, error)
	WithTx(tx *gorm.DB) *GormCommissionRepository
}

// GormCommissionRepository GORM implementation
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates the commission repository
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx binds a transaction
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) *GormCommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// CreateIfAbsent inserts a commission unless the order already has one.
// Rides the unique order index with ON CONFLICT DO NOTHING; returns
// whether this call created the row.
func (r *GormCommissionRepository) CreateIfAbsent(commission *models.Commission) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(commission)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetByOrderID fetches the commission created for an order
func (r *GormCommissionRepository) GetByOrderID(orderID uint) (*models.Commission, error) {
	if orderID == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Where("order_id = ?", orderID).First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// ListByAffiliate lists an affiliate's commissions, newest first
func (r *GormCommissionRepository) ListByAffiliate(affiliateUserID uint, page, pageSize int) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{}).
		Where("affiliate_user_id = ?", affiliateUserID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var commissions []models.Commission
	if err := query.Order("id desc").Find(&commissions).Error; err != nil {
		return nil, 0, err
	}
	return commissions, total, nil
}
