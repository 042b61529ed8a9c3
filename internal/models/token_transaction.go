package models

import "time"

// TokenTransaction credit record, one per paid order.
// The unique index on OrderID is what makes "order paid but never
// credited" detectable, and what keeps a replayed credit from applying
// twice.
type TokenTransaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`                 // primary key
	UserID    uint      `gorm:"index;not null" json:"user_id"`        // owning user
	OrderID   uint      `gorm:"uniqueIndex;not null" json:"order_id"` // source order
	Quantity  int64     `gorm:"not null" json:"quantity"`             // tokens credited
	CreatedAt time.Time `gorm:"index" json:"created_at"`              // created time
}

// TableName table name
func (TokenTransaction) TableName() string {
	return "token_transactions"
}
