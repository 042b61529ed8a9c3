package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/plpainel/tokenapi/internal/cache"
	"github.com/plpainel/tokenapi/internal/constants"
	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/mercadopago"
	"github.com/plpainel/tokenapi/internal/models"
	"github.com/plpainel/tokenapi/internal/queue"
	"github.com/plpainel/tokenapi/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const replayDelay = 5 * time.Minute

// PaymentLookup resolves a payment id into the provider's
// authoritative payment record.
type PaymentLookup interface {
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, int, error)
}

// ReconcileService drives a provider notification to its financial
// side effects: order transition, balance credit, commission.
// Every path acknowledges; the reason code says what happened.
type ReconcileService struct {
	orderRepo    repository.OrderRepository
	balanceRepo  repository.BalanceRepository
	eventRepo    repository.WebhookEventRepository
	lookup       PaymentLookup
	affiliateSvc *AffiliateService
	queueClient  *queue.Client
}

// NewReconcileService creates the reconciliation service
func NewReconcileService(
	orderRepo repository.OrderRepository,
	balanceRepo repository.BalanceRepository,
	eventRepo repository.WebhookEventRepository,
	lookup PaymentLookup,
	affiliateSvc *AffiliateService,
	queueClient *queue.Client,
) *ReconcileService {
	return &ReconcileService{
		orderRepo:    orderRepo,
		balanceRepo:  balanceRepo,
		eventRepo:    eventRepo,
		lookup:       lookup,
		affiliateSvc: affiliateSvc,
		queueClient:  queueClient,
	}
}

// ReconcileResult acknowledgement context for one delivery
type ReconcileResult struct {
	Reason         string `json:"reason"`
	PaymentID      string `json:"payment_id,omitempty"`
	OrderID        uint   `json:"order_id,omitempty"`
	OrderNo        string `json:"order_no,omitempty"`
	ProviderStatus string `json:"provider_status,omitempty"`
	Credited       bool   `json:"credited,omitempty"`
}

// HandleNotification processes one webhook delivery body.
// Never returns an error to the caller's benefit: the receiver always
// acks with HTTP 200 and the result's reason code. The delivery is
// logged to webhook_events whatever the outcome.
func (s *ReconcileService) HandleNotification(ctx context.Context, body []byte) *ReconcileResult {
	log := reconcileLogger("body_size", len(body))

	paymentID := mercadopago.ExtractPaymentID(body)
	if paymentID == "" {
		log.Infow("webhook_ignored_no_payment_id")
		result := &ReconcileResult{Reason: constants.ReasonNoPaymentID}
		s.recordEvent(result, body)
		return result
	}

	seen, err := cache.MarkDeliverySeen(ctx, paymentID)
	if err != nil {
		log.Warnw("webhook_delivery_marker_failed", "payment_id", paymentID, "error", err)
	} else if seen {
		log.Infow("webhook_duplicate_delivery", "payment_id", paymentID)
	}

	result := s.Reconcile(ctx, paymentID)
	s.recordEvent(result, body)

	// A transient provider outage gets one delayed replay per delivery.
	// The replay task calls Reconcile directly, so it cannot re-enqueue
	// itself.
	if result.Reason == constants.ReasonProviderUnresolvable {
		if err := s.EnqueueReplay(paymentID, replayDelay); err != nil {
			log.Warnw("reconcile_replay_enqueue_failed", "payment_id", paymentID, "error", err)
		}
	}
	return result
}

// Reconcile re-derives an order's state from the provider's
// authoritative record for the given payment id. Safe to call any
// number of times; used by the webhook path, the replay task and the
// ops endpoint alike.
func (s *ReconcileService) Reconcile(ctx context.Context, paymentID string) *ReconcileResult {
	log := reconcileLogger("payment_id", paymentID)
	result := &ReconcileResult{PaymentID: paymentID}

	if s.lookup == nil {
		log.Errorw("payment_lookup_not_configured")
		result.Reason = constants.ReasonProviderUnresolvable
		return result
	}

	payment, credential, err := s.lookup.GetPayment(ctx, paymentID)
	if err != nil {
		log.Warnw("payment_lookup_unresolvable", "error", err)
		result.Reason = constants.ReasonProviderUnresolvable
		return result
	}
	if cacheErr := cache.RecordResolvingCredential(ctx, paymentID, credential); cacheErr != nil {
		log.Warnw("credential_note_failed", "error", cacheErr)
	}
	result.ProviderStatus = payment.Status

	if payment.ExternalReference == "" {
		log.Infow("payment_unlinkable_no_external_reference", "provider_status", payment.Status)
		result.Reason = constants.ReasonNoExternalReference
		return result
	}

	order, err := s.orderRepo.GetByOrderNo(payment.ExternalReference)
	if err != nil {
		log.Errorw("order_fetch_failed", "external_reference", payment.ExternalReference, "error", err)
		result.Reason = constants.ReasonProviderUnresolvable
		return result
	}
	if order == nil {
		log.Warnw("order_not_found_for_reference", "external_reference", payment.ExternalReference)
		result.Reason = constants.ReasonOrderNotFound
		return result
	}
	result.OrderID = order.ID
	result.OrderNo = order.OrderNo

	if err := s.orderRepo.RecordProviderStatus(order.ID, paymentID, payment.Status); err != nil {
		log.Warnw("provider_status_record_failed", "order_id", order.ID, "error", err)
	}

	switch payment.Status {
	case constants.MPStatusApproved:
		s.applyApproved(ctx, order, payment, result, log)
	case constants.MPStatusRejected, constants.MPStatusCancelled, constants.MPStatusExpired:
		s.applyFailed(order, result, log)
	default:
		log.Infow("payment_still_pending",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"provider_status", payment.Status,
		)
		result.Reason = constants.ReasonPending
	}
	return result
}

// applyApproved runs the winning pending → paid transition and the
// downstream credit and commission. The loser of the transition race
// still re-runs both downstream steps: they are idempotent, and a
// crash between them on an earlier delivery leaves a gap only a
// replay can close.
func (s *ReconcileService) applyApproved(ctx context.Context, order *models.TokenOrder, payment *mercadopago.Payment, result *ReconcileResult, log *zap.SugaredLogger) {
	gross := decimal.NewFromFloat(payment.TransactionAmount)
	now := time.Now()
	won, err := s.orderRepo.MarkPaid(order.ID, now)
	if err != nil {
		log.Errorw("order_mark_paid_failed", "order_id", order.ID, "error", err)
		result.Reason = constants.ReasonProviderUnresolvable
		return
	}
	if !won {
		log.Infow("order_already_resolved",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"current_status", order.Status,
		)
		result.Reason = constants.ReasonAlreadyResolved
		s.repairPaidOrder(order.ID, gross, result, log)
		return
	}
	log.Infow("order_marked_paid",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"quantity", order.Quantity,
		"amount", order.Amount.String(),
	)
	result.Reason = constants.ReasonPaid

	if err := s.creditBalance(order, log); err == nil {
		result.Credited = true
	}
	s.runCommission(order, gross, log)
}

// repairPaidOrder re-runs credit and commission for an order that is
// already paid. Both steps tolerate having run before, so a verified
// approved redelivery doubles as repair for a partially applied
// earlier one.
func (s *ReconcileService) repairPaidOrder(orderID uint, gross decimal.Decimal, result *ReconcileResult, log *zap.SugaredLogger) {
	current, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		log.Errorw("order_refetch_failed", "order_id", orderID, "error", err)
		return
	}
	if current == nil || current.Status != constants.OrderStatusPaid {
		return
	}
	if err := s.creditBalance(current, log); err == nil {
		result.Credited = true
	}
	s.runCommission(current, gross, log)
}

// creditBalance credits the winner's tokens. A failure here leaves
// money collected without tokens delivered; it is loudly logged and
// alerted, and the gap sweep repairs it later.
func (s *ReconcileService) creditBalance(order *models.TokenOrder, log *zap.SugaredLogger) error {
	err := s.balanceRepo.Credit(order.UserID, order.ID, order.Quantity)
	if err == nil {
		log.Infow("balance_credited",
			"order_id", order.ID,
			"user_id", order.UserID,
			"quantity", order.Quantity,
		)
		return nil
	}
	if errors.Is(err, repository.ErrAlreadyCredited) {
		log.Infow("balance_credit_idempotent", "order_id", order.ID)
		return nil
	}
	log.Errorw("balance_credit_failed_paid_order",
		"order_id", order.ID,
		"user_id", order.UserID,
		"quantity", order.Quantity,
		"error", err,
	)
	if s.queueClient != nil {
		if enqErr := s.queueClient.EnqueueCreditGapAlert(queue.CreditGapAlertPayload{OrderID: order.ID}); enqErr != nil {
			log.Errorw("credit_gap_alert_enqueue_failed", "order_id", order.ID, "error", enqErr)
		}
	}
	return err
}

// runCommission hands the paid order to the commission engine. gross
// is the provider-verified amount; when the caller has none, the
// stored order amount is the explicit fallback.
func (s *ReconcileService) runCommission(order *models.TokenOrder, gross decimal.Decimal, log *zap.SugaredLogger) {
	if s.affiliateSvc == nil {
		return
	}
	if !gross.IsPositive() {
		log.Warnw("commission_gross_fallback_order_amount",
			"order_id", order.ID,
			"order_amount", order.Amount.String(),
		)
		gross = order.Amount.Decimal
	}
	if err := s.affiliateSvc.HandleOrderPaid(order, gross); err != nil {
		log.Warnw("commission_run_failed", "order_id", order.ID, "error", err)
	}
}

func (s *ReconcileService) applyFailed(order *models.TokenOrder, result *ReconcileResult, log *zap.SugaredLogger) {
	won, err := s.orderRepo.MarkFailed(order.ID)
	if err != nil {
		log.Errorw("order_mark_failed_failed", "order_id", order.ID, "error", err)
		result.Reason = constants.ReasonProviderUnresolvable
		return
	}
	if !won {
		log.Infow("order_already_resolved",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"current_status", order.Status,
		)
		result.Reason = constants.ReasonAlreadyResolved
		return
	}
	log.Infow("order_marked_failed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	result.Reason = constants.ReasonFailed
}

// EnqueueReplay schedules a replay of reconciliation for a payment id
func (s *ReconcileService) EnqueueReplay(paymentID string, delay time.Duration) error {
	if s.queueClient == nil {
		return nil
	}
	return s.queueClient.EnqueueReconcileReplay(queue.ReconcileReplayPayload{PaymentID: paymentID}, delay)
}

// SweepCreditGaps finds paid orders missing their credit and repairs
// them in place. Returns how many orders were repaired.
func (s *ReconcileService) SweepCreditGaps(ctx context.Context, limit int) (int, error) {
	orders, err := s.orderRepo.ListPaidWithoutCredit(limit)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for i := range orders {
		order := &orders[i]
		log := reconcileLogger(
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"user_id", order.UserID,
		)
		log.Warnw("credit_gap_detected")
		if err := s.creditBalance(order, log); err != nil {
			continue
		}
		s.runCommission(order, s.verifiedGross(ctx, order, log), log)
		repaired++
	}
	return repaired, nil
}

// verifiedGross re-fetches the provider's collected amount for an
// order being repaired outside a live delivery. Returns zero when the
// provider cannot confirm one; runCommission then falls back to the
// stored order amount.
func (s *ReconcileService) verifiedGross(ctx context.Context, order *models.TokenOrder, log *zap.SugaredLogger) decimal.Decimal {
	if s.lookup == nil || order.ProviderPaymentID == "" {
		return decimal.Zero
	}
	payment, _, err := s.lookup.GetPayment(ctx, order.ProviderPaymentID)
	if err != nil {
		log.Warnw("gross_reverify_unresolvable", "payment_id", order.ProviderPaymentID, "error", err)
		return decimal.Zero
	}
	return decimal.NewFromFloat(payment.TransactionAmount)
}

func (s *ReconcileService) recordEvent(result *ReconcileResult, body []byte) {
	if s.eventRepo == nil {
		return
	}
	var payload models.JSON
	if len(body) > 0 {
		_ = json.Unmarshal(body, &payload)
	}
	event := &models.WebhookEvent{
		PaymentID: result.PaymentID,
		OrderID:   result.OrderID,
		Outcome:   result.Reason,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := s.eventRepo.Create(event); err != nil {
		reconcileLogger().Warnw("webhook_event_record_failed",
			"payment_id", result.PaymentID,
			"outcome", result.Reason,
			"error", err,
		)
	}
}

func reconcileLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}
