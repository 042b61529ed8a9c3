package repository

import (
	"errors"
	"time"

	"github.com/plpainel/tokenapi/internal/models"

	"gorm.io/gorm"
)

// ErrAlreadyCredited the order already has its credit record; callers
// treat this as idempotent success.
var ErrAlreadyCredited = errors.New("order already credited")

// BalanceRepository token balance data access
type BalanceRepository interface {
	GetByUserID(userID uint) (*models.TokenBalance, error)
	Credit(userID, orderID uint, quantity int64) error
	HasCreditForOrder(orderID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormBalanceRepository
}

// GormBalanceRepository GORM implementation
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository creates the balance repository
func NewBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// WithTx binds a transaction
func (r *GormBalanceRepository) WithTx(tx *gorm.DB) *GormBalanceRepository {
	if tx == nil {
		return r
	}
	return &GormBalanceRepository{db: tx}
}

// GetByUserID fetches a user's balance row
func (r *GormBalanceRepository) GetByUserID(userID uint) (*models.TokenBalance, error) {
	if userID == 0 {
		return nil, nil
	}
	var balance models.TokenBalance
	if err := r.db.Where("user_id = ?", userID).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// HasCreditForOrder reports whether the order's credit record exists
func (r *GormBalanceRepository) HasCreditForOrder(orderID uint) (bool, error) {
	if orderID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.TokenTransaction{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Credit adds quantity to the user's balance, exactly once per order.
// The credit record is inserted before the increment so a concurrent
// duplicate aborts on the unique order index without touching the
// balance. The increment itself is a single
// SET balance = balance + ? statement, never read-modify-write.
func (r *GormBalanceRepository) Credit(userID, orderID uint, quantity int64) error {
	if userID == 0 || orderID == 0 || quantity <= 0 {
		return errors.New("invalid credit arguments")
	}
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.TokenTransaction
		err := tx.Where("order_id = ?", orderID).First(&existing).Error
		if err == nil {
			return ErrAlreadyCredited
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		txn := models.TokenTransaction{
			UserID:    userID,
			OrderID:   orderID,
			Quantity:  quantity,
			CreatedAt: now,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		result := tx.Model(&models.TokenBalance{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"balance":    gorm.Expr("balance + ?", quantity),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		// No balance row yet; create it with the credited amount.
		balance := models.TokenBalance{
			UserID:    userID,
			Balance:   quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&balance).Error; err == nil {
			return nil
		}
		// Lost the creation race; the row exists now, increment it.
		retry := tx.Model(&models.TokenBalance{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"balance":    gorm.Expr("balance + ?", quantity),
				"updated_at": now,
			})
		if retry.Error != nil {
			return retry.Error
		}
		if retry.RowsAffected == 0 {
			return errors.New("balance increment applied to no row")
		}
		return nil
	})
}
