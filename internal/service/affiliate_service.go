package service

import (
	"strings"

	"github.com/plpainel/tokenapi/internal/config"
	"github.com/plpainel/tokenapi/internal/constants"
	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/models"
	"github.com/plpainel/tokenapi/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AffiliateService referral attribution and commission creation
type AffiliateService struct {
	affiliateRepo  repository.AffiliateRepository
	referralRepo   repository.ReferralRepository
	commissionRepo repository.CommissionRepository
	userRepo       repository.UserRepository
	cfg            config.AffiliateConfig
}

// NewAffiliateService creates the affiliate service
func NewAffiliateService(
	affiliateRepo repository.AffiliateRepository,
	referralRepo repository.ReferralRepository,
	commissionRepo repository.CommissionRepository,
	userRepo repository.UserRepository,
	cfg config.AffiliateConfig,
) *AffiliateService {
	return &AffiliateService{
		affiliateRepo:  affiliateRepo,
		referralRepo:   referralRepo,
		commissionRepo: commissionRepo,
		userRepo:       userRepo,
		cfg:            cfg,
	}
}

// AttachReferral binds a captured affiliate code to a user.
// First attribution wins: a user who already has a referral keeps it.
// The affiliate user may be unresolvable at capture time; the code is
// stored anyway and backfilled when a commission run first needs it.
func (s *AffiliateService) AttachReferral(userID uint, rawCode string) (*models.Referral, error) {
	code := strings.ToLower(strings.TrimSpace(rawCode))
	if userID == 0 || code == "" {
		return nil, ErrReferralCodeInvalid
	}
	log := affiliateLogger("user_id", userID, "affiliate_code", code)

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.referralRepo.GetByReferredUser(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Infow("referral_attach_idempotent", "referral_id", existing.ID)
		return existing, ErrReferralExists
	}

	affiliate, err := s.affiliateRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	var affiliateUserID *uint
	if affiliate != nil {
		if affiliate.UserID == userID {
			log.Warnw("referral_attach_self_rejected")
			return nil, ErrSelfReferral
		}
		affiliateUserID = &affiliate.UserID
	}

	referral := &models.Referral{
		ReferredUserID:  userID,
		AffiliateUserID: affiliateUserID,
		AffiliateCode:   code,
	}
	if err := s.referralRepo.Create(referral); err != nil {
		// Lost an attach race; the surviving row is the attribution.
		if again, lookupErr := s.referralRepo.GetByReferredUser(userID); lookupErr == nil && again != nil {
			log.Infow("referral_attach_race_lost", "referral_id", again.ID)
			return again, ErrReferralExists
		}
		return nil, err
	}
	log.Infow("referral_attached",
		"referral_id", referral.ID,
		"affiliate_resolved", affiliateUserID != nil,
	)
	return referral, nil
}

// HandleOrderPaid creates the commission owed for a referred paid
// order. gross is the amount the provider confirmed it collected; the
// commission base is always that figure, not the stored order amount.
// Missing attribution, inactive affiliates and zero rates are quiet
// no-ops; a duplicate insert is idempotent success.
func (s *AffiliateService) HandleOrderPaid(order *models.TokenOrder, gross decimal.Decimal) error {
	if order == nil || order.ID == 0 {
		return ErrOrderInvalid
	}
	if !s.cfg.Enabled {
		return nil
	}
	log := affiliateLogger(
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"referred_user_id", order.UserID,
	)

	referral, err := s.referralRepo.GetByReferredUser(order.UserID)
	if err != nil {
		return err
	}
	if referral == nil {
		return nil
	}

	affiliate, err := s.resolveAffiliate(referral, log)
	if err != nil {
		return err
	}
	if affiliate == nil {
		return nil
	}
	if !affiliate.IsActive() {
		log.Infow("commission_skipped_affiliate_disabled", "affiliate_user_id", affiliate.UserID)
		return nil
	}
	if affiliate.UserID == order.UserID {
		log.Warnw("commission_skipped_self_referral", "affiliate_user_id", affiliate.UserID)
		return nil
	}
	if !affiliate.Rate.IsPositive() {
		log.Infow("commission_skipped_zero_rate", "affiliate_user_id", affiliate.UserID)
		return nil
	}

	if !gross.IsPositive() {
		log.Warnw("commission_skipped_no_gross_amount", "affiliate_user_id", affiliate.UserID)
		return nil
	}

	amount := gross.Mul(affiliate.Rate).Round(2)
	commission := &models.Commission{
		AffiliateUserID: affiliate.UserID,
		ReferredUserID:  order.UserID,
		OrderID:         order.ID,
		BaseAmount:      models.NewMoneyFromDecimal(gross),
		Rate:            affiliate.Rate,
		Amount:          models.NewMoneyFromDecimal(amount),
		Status:          constants.CommissionStatusPending,
	}
	created, err := s.commissionRepo.CreateIfAbsent(commission)
	if err != nil {
		log.Errorw("commission_create_failed", "affiliate_user_id", affiliate.UserID, "error", err)
		return err
	}
	if !created {
		log.Infow("commission_create_idempotent", "affiliate_user_id", affiliate.UserID)
		return nil
	}
	log.Infow("commission_created",
		"affiliate_user_id", affiliate.UserID,
		"base_amount", gross.String(),
		"rate", affiliate.Rate.String(),
		"amount", commission.Amount.String(),
	)
	return nil
}

// resolveAffiliate returns the affiliate behind a referral, running the
// code backfill when attribution was captured code-only.
func (s *AffiliateService) resolveAffiliate(referral *models.Referral, log *zap.SugaredLogger) (*models.Affiliate, error) {
	if referral.AffiliateUserID != nil {
		return s.affiliateRepo.GetByUserID(*referral.AffiliateUserID)
	}
	if referral.AffiliateCode == "" {
		return nil, nil
	}
	affiliate, err := s.affiliateRepo.GetByCode(referral.AffiliateCode)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		log.Infow("commission_skipped_code_unresolvable", "affiliate_code", referral.AffiliateCode)
		return nil, nil
	}
	if err := s.referralRepo.BackfillAffiliateUser(referral.ID, affiliate.UserID); err != nil {
		log.Warnw("referral_backfill_failed", "referral_id", referral.ID, "error", err)
	} else {
		log.Infow("referral_backfilled",
			"referral_id", referral.ID,
			"affiliate_user_id", affiliate.UserID,
		)
	}
	return affiliate, nil
}

// ListCommissions lists an affiliate's commissions, newest first
func (s *AffiliateService) ListCommissions(affiliateUserID uint, page, pageSize int) ([]models.Commission, int64, error) {
	if affiliateUserID == 0 {
		return nil, 0, ErrAffiliateNotFound
	}
	return s.commissionRepo.ListByAffiliate(affiliateUserID, page, pageSize)
}

func affiliateLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}
