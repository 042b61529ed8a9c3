package main

import (
	"github.com/plpainel/tokenapi/internal/config"
	"github.com/plpainel/tokenapi/internal/constants"
	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	users := []struct {
		Email       string
		DisplayName string
		Password    string
	}{
		{Email: "demo@plpainel.local", DisplayName: "Demo", Password: "demo-password"},
		{Email: "partner@plpainel.local", DisplayName: "Partner", Password: "partner-password"},
	}

	userIDs := map[string]uint{}
	for _, entry := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", entry.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", entry.Email)
			userIDs[entry.Email] = existing.ID
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(entry.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password for %s: %v", entry.Email, err)
		}
		user := models.User{
			Email:        entry.Email,
			PasswordHash: string(hash),
			DisplayName:  entry.DisplayName,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", entry.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s", entry.Email)
		userIDs[entry.Email] = user.ID
	}

	partnerID := userIDs["partner@plpainel.local"]
	if partnerID != 0 {
		var existing models.Affiliate
		if err := models.DB.Where("user_id = ?", partnerID).First(&existing).Error; err == nil {
			stdLog.Printf("Affiliate already exists: %s", existing.Code)
		} else {
			affiliate := models.Affiliate{
				UserID: partnerID,
				Code:   "partner10",
				Rate:   decimal.NewFromFloat(0.10),
				Status: constants.AffiliateStatusActive,
			}
			if err := models.DB.Create(&affiliate).Error; err != nil {
				stdLog.Printf("Failed to create affiliate: %v", err)
			} else {
				stdLog.Printf("Created affiliate: %s", affiliate.Code)
			}
		}
	}

	stdLog.Printf("Seed finished")
}
