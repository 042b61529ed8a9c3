package models

import (
	"time"

	"github.com/plpainel/tokenapi/internal/constants"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Affiliate referral program profile.
// Code is stored lowercase; lookups normalize the same way so matching
// is case-insensitive. Rate is a fraction in [0,1].
type Affiliate struct {
	ID        uint            `gorm:"primarykey" json:"id"`                                           // primary key
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`                            // owning user
	Code      string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`              // affiliate code
	Rate      decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"rate"`               // commission rate fraction
	Status    string          `gorm:"type:varchar(20);index;not null;default:'active'" json:"status"` // active / disabled
	CreatedAt time.Time       `gorm:"index" json:"created_at"`                                        // created time
	UpdatedAt time.Time       `gorm:"index" json:"updated_at"`                                        // updated time
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`                                                 // soft delete time

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // owner
}

// TableName table name
func (Affiliate) TableName() string {
	return "affiliates"
}

// IsActive reports whether the affiliate can earn commissions
func (a *Affiliate) IsActive() bool {
	return a != nil && a.Status == constants.AffiliateStatusActive
}
