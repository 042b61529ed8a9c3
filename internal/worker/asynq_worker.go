package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/provider"
	"github.com/plpainel/tokenapi/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer async task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReconcileReplay, c.handleReconcileReplay)
	mux.HandleFunc(queue.TaskCreditGapAlert, c.handleCreditGapAlert)
}

func (c *Consumer) handleReconcileReplay(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_reconcile_replay_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReconcileReplayPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reconcile_replay_unmarshal_failed", "error", err)
		return err
	}
	paymentID := strings.TrimSpace(payload.PaymentID)
	if paymentID == "" {
		logger.Debugw("worker_reconcile_replay_skip_empty_payment_id")
		return nil
	}
	if c.ReconcileService == nil {
		logger.Warnw("worker_reconcile_replay_skip_service_nil", "payment_id", paymentID)
		return nil
	}
	result := c.ReconcileService.Reconcile(ctx, paymentID)
	logger.Infow("worker_reconcile_replay_done",
		"payment_id", paymentID,
		"reason", result.Reason,
		"order_no", result.OrderNo,
	)
	return nil
}

// handleCreditGapAlert surfaces a paid order that failed to credit.
// The periodic gap sweep repairs the balance; this task exists so the
// failure shows up in logs at error level with full order context
// instead of waiting silently for the sweep.
func (c *Consumer) handleCreditGapAlert(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_credit_gap_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CreditGapAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_credit_gap_alert_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_credit_gap_alert_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_credit_gap_alert_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_credit_gap_alert_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	credited, err := c.BalanceRepo.HasCreditForOrder(order.ID)
	if err != nil {
		logger.Warnw("worker_credit_gap_alert_check_failed", "order_id", order.ID, "error", err)
		return err
	}
	if credited {
		logger.Infow("worker_credit_gap_alert_already_repaired", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	logger.Errorw("credit_gap_detected",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"quantity", order.Quantity,
		"status", order.Status,
	)
	return nil
}
