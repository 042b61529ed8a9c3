package repository

import "time"

// OrderListFilter token order list filter
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WebhookEventListFilter webhook event list filter
type WebhookEventListFilter struct {
	Page      int
	PageSize  int
	PaymentID string
	Outcome   string
}
