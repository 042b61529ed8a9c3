package models

import "time"

// Referral attribution of a referred user to an affiliate.
// At most one row per referred user (first attribution wins).
// AffiliateUserID may start null when only a code was captured at
// signup; the reconciliation path backfills it by code lookup.
type Referral struct {
	ID              uint      `gorm:"primarykey" json:"id"`                         // primary key
	ReferredUserID  uint      `gorm:"uniqueIndex;not null" json:"referred_user_id"` // referred user
	AffiliateUserID *uint     `gorm:"index" json:"affiliate_user_id,omitempty"`     // credited affiliate user
	AffiliateCode   string    `gorm:"type:varchar(32)" json:"affiliate_code"`       // captured code
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                      // created time
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`                      // updated time
}

// TableName table name
func (Referral) TableName() string {
	return "referrals"
}
