package router

import (
	"time"

	"github.com/HD3-run/Rcommitra/internal/auth"
	"github.com/HD3-run/Rcommitra/internal/cache"
	"github.com/HD3-run/Rcommitra/internal/config"
	"github.com/HD3-run/Rcommitra/internal/handler"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"
	"github.com/HD3-run/Rcommitra/internal/service"
	"github.com/HD3-run/Rcommitra/internal/session"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, identityCache cache.Cache) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler(cfg.Production()))
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	sessions := session.NewRedisStore(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)
	tokens := auth.NewTokenService(rdb, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, merchantRepo, sessions, tokens)
	orderSvc := service.NewOrderService(orderRepo, productRepo, customerRepo, userRepo)
	inventorySvc := service.NewInventoryService(productRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, orderRepo)
	reportSvc := service.NewReportService(reportRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cookieMax := cfg.SessionTTLHours * 3600
	authH := handler.NewAuthHandler(authSvc, cookieMax, cfg.Production())
	usersH := handler.NewUsersHandler(authSvc, identityCache)
	ordersH := handler.NewOrdersHandler(orderSvc, identityCache, cfg.MaxUploadMB)
	inventoryH := handler.NewInventoryHandler(inventorySvc, cfg.MaxUploadMB)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc, cfg.MaxUploadMB)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		authGroup.POST("/logout", authH.Logout)
	}

	// Protected routes
	authMW := middleware.Authenticate(sessions, userRepo, identityCache, tokens)
	api := r.Group("/api", authMW)
	{
		api.GET("/auth/me", authH.Me)

		// Orders — every staff role may create, read, and record payments;
		// the full-whitelist status endpoint and assignment are admin-only.
		orders := api.Group("/orders")
		{
			orders.POST("", ordersH.Create)
			orders.POST("/add-manual", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.GET("/:id/history", ordersH.History)
			orders.POST("/upload-csv", ordersH.UploadCSV)
			orders.PATCH("/:id/status", middleware.RequireRole(model.RoleAdmin), ordersH.UpdateStatus)
			orders.PATCH("/:id/payment", ordersH.UpdatePayment)
			orders.POST("/assign", middleware.RequireRole(model.RoleAdmin), ordersH.Assign)
		}

		// Employee views — scoped to the caller's assigned orders, with the
		// narrower status whitelist.
		employee := api.Group("/employee")
		{
			employee.GET("/orders", ordersH.EmployeeOrders)
			employee.GET("/assigned-orders", ordersH.EmployeeAssignedOrders)
			employee.PUT("/orders/:id/status", ordersH.EmployeeUpdateStatus)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("", inventoryH.List)
			inventory.GET("/categories", inventoryH.Categories)
			inventory.GET("/low-stock", inventoryH.LowStock)
			inventory.GET("/:id", inventoryH.Get)
			write := inventory.Group("", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
			{
				write.POST("", inventoryH.Add)
				write.POST("/upload-csv", inventoryH.UploadCSV)
				write.PUT("/bulk-update", inventoryH.BulkUpdate)
				write.PUT("/:id/price", inventoryH.UpdateCostPrice)
			}
		}

		invoices := api.Group("/invoices", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
		{
			invoices.GET("", invoicesH.List)
			invoices.POST("/add-manual", invoicesH.CreateManual)
			invoices.POST("/upload-csv", invoicesH.UploadCSV)
		}

		reports := api.Group("/reports", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
		{
			reports.GET("/dashboard", reportsH.Dashboard)
			reports.GET("/sales", reportsH.Sales)
			reports.GET("/export/sales", reportsH.ExportSales)
		}

		users := api.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.GET("", usersH.List)
			users.POST("", usersH.Create)
			users.PUT("/:id/role", usersH.UpdateRole)
			users.DELETE("/:id", usersH.Delete)
		}

		profile := api.Group("/profile")
		{
			profile.GET("", usersH.Profile)
			profile.PUT("", usersH.UpdateProfile)
			profile.PUT("/password", usersH.ChangePassword)
		}
	}

	// Swagger UI — only enabled outside production
	if !cfg.Production() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
