package models

import "time"

// TokenBalance per-user token balance.
// Credits happen through an atomic increment only; debits (site
// creation) belong to another subsystem.
type TokenBalance struct {
	ID        uint      `gorm:"primarykey" json:"id"`                // primary key
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"` // owning user
	Balance   int64     `gorm:"not null;default:0" json:"balance"`   // token count
	CreatedAt time.Time `gorm:"index" json:"created_at"`             // created time
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`             // updated time
}

// TableName table name
func (TokenBalance) TableName() string {
	return "token_balances"
}
