package queue

import (
	"encoding/json"

	"github.com/plpainel/tokenapi/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReconcileReplay re-drives reconciliation for a payment id
	TaskReconcileReplay = constants.TaskReconcileReplay
	// TaskCreditGapAlert flags a paid order missing its balance credit
	TaskCreditGapAlert = constants.TaskCreditGapAlert
)

// ReconcileReplayPayload replay task payload
type ReconcileReplayPayload struct {
	PaymentID string `json:"payment_id"`
}

// CreditGapAlertPayload credit gap alert payload
type CreditGapAlertPayload struct {
	OrderID uint `json:"order_id"`
}

// NewReconcileReplayTask creates a replay task
func NewReconcileReplayTask(payload ReconcileReplayPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileReplay, body), nil
}

// NewCreditGapAlertTask creates a credit gap alert task
func NewCreditGapAlertTask(payload CreditGapAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCreditGapAlert, body), nil
}
