package constants

// Token order status
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Mercado Pago payment status vocabulary
const (
	MPStatusApproved  = "approved"
	MPStatusPending   = "pending"
	MPStatusInProcess = "in_process"
	MPStatusRejected  = "rejected"
	MPStatusCancelled = "cancelled"
	MPStatusExpired   = "expired"
)

// Commission status
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusPaid     = "paid"
	CommissionStatusCanceled = "canceled"
)

// Affiliate status
const (
	AffiliateStatusActive   = "active"
	AffiliateStatusDisabled = "disabled"
)

// User status
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Webhook acknowledgement reason codes
const (
	ReasonNoPaymentID          = "no_payment_id"
	ReasonProviderUnresolvable = "provider_unresolvable"
	ReasonNoExternalReference  = "no_external_reference"
	ReasonOrderNotFound        = "order_not_found"
	ReasonAlreadyResolved      = "already_resolved"
	ReasonPaid                 = "paid"
	ReasonFailed               = "failed"
	ReasonPending              = "pending"
)

// Queue names
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Async task types
const (
	TaskReconcileReplay = "reconcile:replay"
	TaskCreditGapAlert  = "alert:credit_gap"
)

// Payment provider identifier
const (
	ProviderMercadoPago = "mercadopago"
)
