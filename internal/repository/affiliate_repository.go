package repository

import (
	"errors"
	"strings"

	"github.com/plpainel/tokenapi/internal/models"

	"gorm.io/gorm"
)

// AffiliateRepository affiliate profile data access
type AffiliateRepository interface {
	Create(affiliate *models.Affiliate) error
	GetByUserID(userID uint) (*models.Affiliate, error)
	GetByCode(code string) (*models.Affiliate, error)
	UpdateStatus(userID uint, status string) error
	WithTx(tx *gorm.DB) *GormAffiliateRepository
}

// GormAffiliateRepository GORM implementation
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository creates the affiliate repository
func NewAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// WithTx binds a transaction
func (r *GormAffiliateRepository) WithTx(tx *gorm.DB) *GormAffiliateRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateRepository{db: tx}
}

// Create creates an affiliate profile; the code is normalized to lowercase
func (r *GormAffiliateRepository) Create(affiliate *models.Affiliate) error {
	affiliate.Code = strings.ToLower(strings.TrimSpace(affiliate.Code))
	return r.db.Create(affiliate).Error
}

// GetByUserID fetches the affiliate profile of a user
func (r *GormAffiliateRepository) GetByUserID(userID uint) (*models.Affiliate, error) {
	if userID == 0 {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByCode fetches an affiliate by code, case-insensitively
func (r *GormAffiliateRepository) GetByCode(code string) (*models.Affiliate, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("code = ?", code).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// UpdateStatus enables or disables an affiliate
func (r *GormAffiliateRepository) UpdateStatus(userID uint, status string) error {
	if userID == 0 {
		return nil
	}
	return r.db.Model(&models.Affiliate{}).
		Where("user_id = ?", userID).
		Update("status", status).Error
}
