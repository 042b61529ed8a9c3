package models

import (
	"time"

	"github.com/plpainel/tokenapi/internal/constants"

	"gorm.io/gorm"
)

// TokenOrder token purchase order.
// OrderNo is the opaque identifier handed to the provider as
// external_reference; Status only ever moves pending → paid or
// pending → failed, each at most once. ProviderPaymentID and
// ProviderStatus mirror the provider's last known view and may keep
// changing after the order itself is terminal.
type TokenOrder struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                    // primary key
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`                    // external reference
	UserID            uint           `gorm:"index;not null" json:"user_id"`                           // owning user
	Quantity          int64          `gorm:"not null" json:"quantity"`                                // tokens purchased
	UnitPrice         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // price per token
	Amount            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`     // amount due
	Currency          string         `gorm:"not null;default:'BRL'" json:"currency"`                  // currency
	Status            string         `gorm:"index;not null;default:'pending'" json:"status"`          // pending / paid / failed
	ProviderPaymentID string         `gorm:"index" json:"provider_payment_id,omitempty"`              // provider payment id
	ProviderStatus    string         `json:"provider_status,omitempty"`                               // raw provider status
	PixQRCode         string         `gorm:"type:text" json:"-"`                                      // PIX QR content (filled by checkout)
	PixCopyPaste      string         `gorm:"type:text" json:"-"`                                      // PIX copy-paste code
	PaidAt            *time.Time     `gorm:"index" json:"paid_at"`                                    // paid time
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                 // created time
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                 // updated time
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                          // soft delete time
}

// TableName table name
func (TokenOrder) TableName() string {
	return "token_orders"
}

// IsTerminal reports whether the order already resolved
func (o *TokenOrder) IsTerminal() bool {
	if o == nil {
		return false
	}
	return o.Status == constants.OrderStatusPaid || o.Status == constants.OrderStatusFailed
}
