package provider

import (
	"time"

	"github.com/plpainel/tokenapi/internal/cache"
	"github.com/plpainel/tokenapi/internal/config"
	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/mercadopago"
	"github.com/plpainel/tokenapi/internal/models"
	"github.com/plpainel/tokenapi/internal/queue"
	"github.com/plpainel/tokenapi/internal/repository"
	"github.com/plpainel/tokenapi/internal/service"
)

// Container dependency wiring
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	OrderRepo        repository.OrderRepository
	BalanceRepo      repository.BalanceRepository
	AffiliateRepo    repository.AffiliateRepository
	ReferralRepo     repository.ReferralRepository
	CommissionRepo   repository.CommissionRepository
	WebhookEventRepo repository.WebhookEventRepository

	// Services
	MercadoPagoClient *mercadopago.Client
	OrderService      *service.OrderService
	AffiliateService  *service.AffiliateService
	ReconcileService  *service.ReconcileService
}

// NewContainer builds the container
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.BalanceRepo = repository.NewBalanceRepository(db)
	c.AffiliateRepo = repository.NewAffiliateRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.WebhookEventRepo = repository.NewWebhookEventRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config

	mpClient, err := mercadopago.NewClient(mercadopago.Config{
		BaseURL:      cfg.MercadoPago.BaseURL,
		AccessTokens: cfg.MercadoPago.AccessTokens,
		Timeout:      time.Duration(cfg.MercadoPago.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		logger.Warnw("provider_init_mercadopago_failed", "error", err)
	}
	c.MercadoPagoClient = mpClient

	c.OrderService = service.NewOrderService(c.OrderRepo, c.BalanceRepo, c.UserRepo, cfg.Order)
	c.AffiliateService = service.NewAffiliateService(
		c.AffiliateRepo,
		c.ReferralRepo,
		c.CommissionRepo,
		c.UserRepo,
		cfg.Affiliate,
	)

	var lookup service.PaymentLookup
	if mpClient != nil {
		lookup = mpClient
	}
	c.ReconcileService = service.NewReconcileService(
		c.OrderRepo,
		c.BalanceRepo,
		c.WebhookEventRepo,
		lookup,
		c.AffiliateService,
		c.QueueClient,
	)
}
