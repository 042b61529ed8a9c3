package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/plpainel/tokenapi/internal/models"

	"gorm.io/gorm"
)

// ReferralRepository referral attribution data access
type ReferralRepository interface {
	Create(referral *models.Referral) error
	GetByReferredUser(userID uint) (*models.Referral, error)
	BackfillAffiliateUser(referralID, affiliateUserID uint) error
	WithTx(tx *gorm.DB) *GormReferralRepository
}

// GormReferralRepository GORM implementation
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository creates the referral repository
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx binds a transaction
func (r *GormReferralRepository) WithTx(tx *gorm.DB) *GormReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Create records an attribution; the unique index on referred_user_id
// keeps the first one and rejects the rest
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	referral.AffiliateCode = strings.ToLower(strings.TrimSpace(referral.AffiliateCode))
	return r.db.Create(referral).Error
}

// GetByReferredUser fetches the attribution of a referred user
func (r *GormReferralRepository) GetByReferredUser(userID uint) (*models.Referral, error) {
	if userID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Where("referred_user_id = ?", userID).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// BackfillAffiliateUser fills in the resolved affiliate user on a
// code-only attribution. Conditional on the column still being null so
// a concurrent backfill cannot repoint an existing attribution.
func (r *GormReferralRepository) BackfillAffiliateUser(referralID, affiliateUserID uint) error {
	if referralID == 0 || affiliateUserID == 0 {
		return nil
	}
	return r.db.Model(&models.Referral{}).
		Where("id = ? AND affiliate_user_id IS NULL", referralID).
		Updates(map[string]interface{}{
			"affiliate_user_id": affiliateUserID,
			"updated_at":        time.Now(),
		}).Error
}
