package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/plpainel/tokenapi/internal/config"
	"github.com/plpainel/tokenapi/internal/constants"
	"github.com/plpainel/tokenapi/internal/models"
	"github.com/plpainel/tokenapi/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupAffiliateServiceTest(t *testing.T) (*AffiliateService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:affiliate_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.TokenOrder{},
		&models.Affiliate{},
		&models.Referral{},
		&models.Commission{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewAffiliateService(
		repository.NewAffiliateRepository(db),
		repository.NewReferralRepository(db),
		repository.NewCommissionRepository(db),
		repository.NewUserRepository(db),
		config.AffiliateConfig{Enabled: true},
	)
	return svc, db
}

func createAffiliateTestUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("affiliate_user_%d@example.com", id),
		PasswordHash: "hash",
		Status:       constants.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func createTestAffiliate(t *testing.T, db *gorm.DB, userID uint, code, rate, status string) {
	t.Helper()
	affiliate := models.Affiliate{
		UserID: userID,
		Code:   code,
		Rate:   decimal.RequireFromString(rate),
		Status: status,
	}
	if err := db.Create(&affiliate).Error; err != nil {
		t.Fatalf("create affiliate failed: %v", err)
	}
}

func TestAttachReferralFirstAttributionWins(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)
	createAffiliateTestUser(t, db, 501)
	createAffiliateTestUser(t, db, 502)
	createAffiliateTestUser(t, db, 503)
	createTestAffiliate(t, db, 501, "first501", "0.10", constants.AffiliateStatusActive)
	createTestAffiliate(t, db, 503, "other503", "0.10", constants.AffiliateStatusActive)

	referral, err := svc.AttachReferral(502, "FIRST501")
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if referral.AffiliateUserID == nil || *referral.AffiliateUserID != 501 {
		t.Fatalf("affiliate not resolved: %+v", referral)
	}
	if referral.AffiliateCode != "first501" {
		t.Fatalf("code not normalized: %s", referral.AffiliateCode)
	}

	again, err := svc.AttachReferral(502, "other503")
	if !errors.Is(err, ErrReferralExists) {
		t.Fatalf("expected referral exists, got: %v", err)
	}
	if again.AffiliateUserID == nil || *again.AffiliateUserID != 501 {
		t.Fatalf("second attach repointed attribution: %+v", again)
	}
}

func TestAttachReferralUnresolvedCodeKept(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)
	createAffiliateTestUser(t, db, 511)

	referral, err := svc.AttachReferral(511, "notyet999")
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if referral.AffiliateUserID != nil {
		t.Fatalf("unknown code should leave affiliate unresolved")
	}
	if referral.AffiliateCode != "notyet999" {
		t.Fatalf("code not kept: %s", referral.AffiliateCode)
	}
}

func TestAttachReferralRejectsSelf(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)
	createAffiliateTestUser(t, db, 521)
	createTestAffiliate(t, db, 521, "self521", "0.10", constants.AffiliateStatusActive)

	if _, err := svc.AttachReferral(521, "self521"); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("expected self referral rejection, got: %v", err)
	}
}

func TestHandleOrderPaidNoReferralNoop(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)
	createAffiliateTestUser(t, db, 531)
	order := &models.TokenOrder{
		ID:      77,
		OrderNo: "TKO-NOREF",
		UserID:  531,
		Amount:  models.NewMoneyFromDecimal(decimal.RequireFromString("40.00")),
	}

	if err := svc.HandleOrderPaid(order, decimal.RequireFromString("40.00")); err != nil {
		t.Fatalf("expected quiet no-op, got: %v", err)
	}
	var commissions int64
	if err := db.Model(&models.Commission{}).Count(&commissions).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if commissions != 0 {
		t.Fatalf("commissions = %d, want 0", commissions)
	}
}

func TestHandleOrderPaidDisabledProgramNoop(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)
	svc.cfg.Enabled = false
	createAffiliateTestUser(t, db, 541)
	createAffiliateTestUser(t, db, 542)
	createTestAffiliate(t, db, 541, "prog541", "0.10", constants.AffiliateStatusActive)
	affiliateUserID := uint(541)
	if err := db.Create(&models.Referral{ReferredUserID: 542, AffiliateUserID: &affiliateUserID, AffiliateCode: "prog541"}).Error; err != nil {
		t.Fatalf("create referral failed: %v", err)
	}

	order := &models.TokenOrder{
		ID:      88,
		OrderNo: "TKO-PROGOFF",
		UserID:  542,
		Amount:  models.NewMoneyFromDecimal(decimal.RequireFromString("40.00")),
	}
	if err := svc.HandleOrderPaid(order, decimal.RequireFromString("40.00")); err != nil {
		t.Fatalf("expected no-op with program disabled, got: %v", err)
	}
	var commissions int64
	if err := db.Model(&models.Commission{}).Count(&commissions).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if commissions != 0 {
		t.Fatalf("commissions = %d, want 0", commissions)
	}
}

func TestHandleOrderPaidDuplicateIsIdempotent(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)
	createAffiliateTestUser(t, db, 551)
	createAffiliateTestUser(t, db, 552)
	createTestAffiliate(t, db, 551, "dup551", "0.10", constants.AffiliateStatusActive)
	affiliateUserID := uint(551)
	if err := db.Create(&models.Referral{ReferredUserID: 552, AffiliateUserID: &affiliateUserID, AffiliateCode: "dup551"}).Error; err != nil {
		t.Fatalf("create referral failed: %v", err)
	}

	order := &models.TokenOrder{
		OrderNo:   "TKO-DUPC",
		UserID:    552,
		Quantity:  10,
		UnitPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("4.00")),
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("40.00")),
		Currency:  "BRL",
		Status:    constants.OrderStatusPaid,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	gross := decimal.RequireFromString("40.00")
	if err := svc.HandleOrderPaid(order, gross); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := svc.HandleOrderPaid(order, gross); err != nil {
		t.Fatalf("second run should be idempotent, got: %v", err)
	}

	var commissions []models.Commission
	if err := db.Find(&commissions).Error; err != nil {
		t.Fatalf("load commissions failed: %v", err)
	}
	if len(commissions) != 1 {
		t.Fatalf("commissions = %d, want 1", len(commissions))
	}
	if commissions[0].Amount.String() != "4.00" {
		t.Fatalf("amount = %s, want 4.00", commissions[0].Amount.String())
	}
}

func TestListCommissions(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)
	createAffiliateTestUser(t, db, 561)
	for i := 1; i <= 3; i++ {
		commission := models.Commission{
			AffiliateUserID: 561,
			ReferredUserID:  600 + uint(i),
			OrderID:         uint(9000 + i),
			BaseAmount:      models.NewMoneyFromDecimal(decimal.RequireFromString("40.00")),
			Rate:            decimal.RequireFromString("0.10"),
			Amount:          models.NewMoneyFromDecimal(decimal.RequireFromString("4.00")),
			Status:          constants.CommissionStatusPending,
		}
		if err := db.Create(&commission).Error; err != nil {
			t.Fatalf("create commission failed: %v", err)
		}
	}

	items, total, err := svc.ListCommissions(561, 1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(items) != 2 {
		t.Fatalf("page size = %d, want 2", len(items))
	}
	if items[0].OrderID != 9003 {
		t.Fatalf("expected newest first, got order %d", items[0].OrderID)
	}
}
