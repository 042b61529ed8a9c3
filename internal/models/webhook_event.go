package models

import "time"

// WebhookEvent received provider notification, kept for operator
// investigation. Outcome carries the acknowledgement reason code.
type WebhookEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`                  // primary key
	PaymentID string    `gorm:"index" json:"payment_id"`               // extracted provider payment id
	OrderID   uint      `gorm:"index" json:"order_id,omitempty"`       // resolved order, if any
	Outcome   string    `gorm:"type:varchar(40);index" json:"outcome"` // reason code
	Payload   JSON      `gorm:"type:json" json:"payload,omitempty"`    // raw notification body
	CreatedAt time.Time `gorm:"index" json:"created_at"`               // received time
}

// TableName table name
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
