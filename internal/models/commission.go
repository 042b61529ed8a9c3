package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Commission affiliate payout owed for a referred paid order.
// The unique index on OrderID is the idempotency guard: a second insert
// for the same order is a conflict, never a duplicate row. Rows are
// created in status pending; the payout admin workflow moves them on.
type Commission struct {
	ID              uint            `gorm:"primarykey" json:"id"`                                     // primary key
	AffiliateUserID uint            `gorm:"index;not null" json:"affiliate_user_id"`                  // credited affiliate user
	ReferredUserID  uint            `gorm:"index;not null" json:"referred_user_id"`                   // paying user
	OrderID         uint            `gorm:"uniqueIndex;not null" json:"order_id"`                     // source order
	BaseAmount      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"base_amount"` // gross payment amount
	Rate            decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"rate"`         // rate applied
	Amount          Money           `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`      // commission amount
	Status          string          `gorm:"type:varchar(32);index;not null" json:"status"`            // pending / approved / paid / canceled
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`                                  // created time
	UpdatedAt       time.Time       `gorm:"index" json:"updated_at"`                                  // updated time
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`                                           // soft delete time
}

// TableName table name
func (Commission) TableName() string {
	return "commissions"
}
