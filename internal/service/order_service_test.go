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
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.TokenOrder{},
		&models.TokenBalance{},
		&models.TokenTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewBalanceRepository(db),
		repository.NewUserRepository(db),
		config.OrderConfig{MinTokens: 5, UnitPriceCents: 400, Currency: "BRL"},
	)
	return svc, db
}

func createOrderTestUser(t *testing.T, db *gorm.DB, id uint, status string) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("order_user_%d@example.com", id),
		PasswordHash: "hash",
		Status:       status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func TestCreateOrderComputesAmount(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	createOrderTestUser(t, db, 401, constants.UserStatusActive)

	order, err := svc.CreateOrder(CreateOrderInput{UserID: 401, Quantity: 10})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("order status = %s, want pending", order.Status)
	}
	if order.Amount.String() != "40.00" {
		t.Fatalf("amount = %s, want 40.00", order.Amount.String())
	}
	if order.UnitPrice.String() != "4.00" {
		t.Fatalf("unit price = %s, want 4.00", order.UnitPrice.String())
	}
	if order.Currency != "BRL" {
		t.Fatalf("currency = %s, want BRL", order.Currency)
	}
	if order.OrderNo == "" {
		t.Fatalf("order number empty")
	}

	again, err := svc.CreateOrder(CreateOrderInput{UserID: 401, Quantity: 10})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if again.OrderNo == order.OrderNo {
		t.Fatalf("order numbers must be unique, both %s", order.OrderNo)
	}
}

func TestCreateOrderRejectsBelowMinimum(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	createOrderTestUser(t, db, 402, constants.UserStatusActive)

	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 402, Quantity: 4}); !errors.Is(err, ErrOrderInvalid) {
		t.Fatalf("expected order invalid, got: %v", err)
	}
}

func TestCreateOrderRejectsUnknownOrDisabledUser(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	createOrderTestUser(t, db, 403, constants.UserStatusDisabled)

	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 999, Quantity: 10}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got: %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 403, Quantity: 10}); !errors.Is(err, ErrOrderInvalid) {
		t.Fatalf("expected order invalid for disabled user, got: %v", err)
	}
}

func TestGetOrderByNoScopesToUser(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	createOrderTestUser(t, db, 404, constants.UserStatusActive)
	createOrderTestUser(t, db, 405, constants.UserStatusActive)

	order, err := svc.CreateOrder(CreateOrderInput{UserID: 404, Quantity: 10})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	got, err := svc.GetOrderByNo(order.OrderNo, 404)
	if err != nil {
		t.Fatalf("get by no failed: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("got order %d, want %d", got.ID, order.ID)
	}

	if _, err := svc.GetOrderByNo(order.OrderNo, 405); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found for foreign user, got: %v", err)
	}
	if _, err := svc.GetOrderByNo("TKO-NOPE", 0); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found for unknown number, got: %v", err)
	}
}

func TestGetBalanceZeroWithoutRow(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	createOrderTestUser(t, db, 406, constants.UserStatusActive)

	got, err := svc.GetBalance(406)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}

	if err := db.Create(&models.TokenBalance{UserID: 406, Balance: 25}).Error; err != nil {
		t.Fatalf("seed balance failed: %v", err)
	}
	got, err = svc.GetBalance(406)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if got != 25 {
		t.Fatalf("balance = %d, want 25", got)
	}
}
