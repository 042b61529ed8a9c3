package router

import (
	"fmt"
	"strings"

	"github.com/plpainel/tokenapi/internal/cache"
	"github.com/plpainel/tokenapi/internal/config"
	publichandlers "github.com/plpainel/tokenapi/internal/http/handlers/public"
	"github.com/plpainel/tokenapi/internal/logger"
	"github.com/plpainel/tokenapi/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires middleware and routes
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pl"
	}
	webhookRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:webhook", redisPrefix),
		WindowSeconds: cfg.Security.WebhookRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WebhookRateLimit.MaxRequests,
		Message:       "webhook rate limit exceeded",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Provider callbacks. GET answers Mercado Pago's endpoint
		// verification pings.
		apiV1.POST("/payments/webhook/mercadopago",
			RateLimitMiddleware(cache.Client(), webhookRule, KeyByIP),
			publicHandler.MercadoPagoWebhook,
		)
		apiV1.GET("/payments/webhook/mercadopago", publicHandler.MercadoPagoWebhookProbe)

		// Token orders and balances
		apiV1.POST("/orders", publicHandler.CreateOrder)
		apiV1.GET("/orders", publicHandler.ListOrders)
		apiV1.GET("/orders/:order_no", publicHandler.GetOrderByOrderNo)
		apiV1.GET("/users/:user_id/balance", publicHandler.GetUserBalance)

		// Affiliate program
		apiV1.POST("/affiliates/attach", publicHandler.AttachReferral)
		apiV1.GET("/affiliates/:user_id/commissions", publicHandler.ListCommissions)

		// Operator tools
		ops := apiV1.Group("/ops")
		{
			ops.POST("/reconcile/:payment_id", publicHandler.ReconcileReplay)
			ops.GET("/webhook-events", publicHandler.ListWebhookEvents)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
