package router

import (
	"time"

	"paypilot/internal/config"
	"paypilot/internal/handler"
	"paypilot/internal/middleware"
	"paypilot/internal/model"
	"paypilot/internal/repository"
	"paypilot/internal/service"
	"paypilot/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	ledgerSvc := service.NewLedgerService(productRepo, movementRepo)
	productSvc := service.NewProductService(productRepo, movementRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, orderRepo, productRepo, ledgerSvc, cfg.InvoiceDueDays)
	orderSvc := service.NewOrderService(orderRepo, productRepo, clientRepo, invoiceSvc)
	paymentSvc := service.NewPaymentService(
		paymentRepo, invoiceRepo, clientRepo, dispatcher,
		decimal.NewFromFloat(cfg.OverpaymentTolerance),
		service.OverpaymentMode(cfg.OverpaymentMode),
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	productsH := handler.NewProductsHandler(productSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	operators := middleware.RequireRole(model.RoleSuperadmin, model.RoleAdmin, model.RoleEmployee)
	anyUser := middleware.RequireRole(model.RoleSuperadmin, model.RoleAdmin, model.RoleEmployee, model.RoleClient)

	api := r.Group("/", jwtMW)
	{
		// Orders — portal clients place and follow their own orders; operators
		// manage the lifecycle. Ownership checks live in the service layer.
		api.POST("/orders", anyUser, ordersH.Create)
		api.GET("/orders", anyUser, ordersH.List)
		api.GET("/orders/:id", anyUser, ordersH.Get)
		api.PATCH("/orders/:id", anyUser, ordersH.Transition)

		// Invoices and payments — back office only
		api.POST("/invoices", operators, invoicesH.Create)
		api.GET("/invoices", operators, invoicesH.List)
		api.GET("/invoices/:id", operators, invoicesH.Get)
		api.DELETE("/invoices/:id", operators, invoicesH.Delete)

		api.POST("/payments", operators, paymentsH.Record)
		api.GET("/payments", operators, paymentsH.List)

		// Products — catalog reads for everyone, stock writes for back office
		api.GET("/products", anyUser, productsH.List)
		api.PATCH("/product/:id", operators, productsH.AdjustStock)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
