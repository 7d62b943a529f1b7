// Package server wires services, handlers and middleware into the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"gastos/internal/config"
	_ "gastos/internal/docs" // swagger docs
	"gastos/internal/handlers"
	"gastos/internal/middleware"
	"gastos/internal/notify"
	"gastos/internal/services"
)

// Services groups the business services used by the router.
type Services struct {
	Users         services.UserServicer
	Roles         services.RoleServicer
	Categories    services.CategoryServicer
	Movements     services.MovementServicer
	Budgets       services.BudgetServicer
	Reports       services.ReportServicer
	Admin         services.AdminServicer
	PasswordReset services.PasswordResetServicer
	Audit         services.AuditServicer
}

// NewServices builds every service on db.
func NewServices(db *gorm.DB, cfg *config.Config, notifier notify.Notifier) *Services {
	return &Services{
		Users:         services.NewUserService(db),
		Roles:         services.NewRoleService(db),
		Categories:    services.NewCategoryService(db),
		Movements:     services.NewMovementService(db),
		Budgets:       services.NewBudgetService(db),
		Reports:       services.NewReportService(db),
		Admin:         services.NewAdminService(db),
		PasswordReset: services.NewPasswordResetService(db, notifier, cfg.ResetCodeTTL),
		Audit:         services.NewAuditService(db),
	}
}

// NewRouter builds the gin engine with every route under /api. The limiter
// guards the public token and password reset endpoints.
func NewRouter(cfg *config.Config, svc *Services, limiter *middleware.RateLimiter) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	resetHandler := handlers.NewPasswordResetHandler(svc.PasswordReset, cfg.Debug)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	movementHandler := handlers.NewMovementHandler(svc.Movements, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	adminHandler := handlers.NewAdminHandler(svc.Admin)
	roleHandler := handlers.NewRoleHandler(svc.Roles, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)

	limited := auth.Group("", middleware.RateLimit(limiter))
	limited.POST("/token", authHandler.ObtainToken)
	limited.POST("/token/refresh", authHandler.RefreshToken)
	limited.POST("/password-reset/request", resetHandler.RequestReset)
	limited.POST("/password-reset/confirm", resetHandler.ConfirmReset)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)

	adminOrReadOnly := middleware.RequirePermission(svc.Users, middleware.IsAdminOrReadOnly)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	globals := categories.Group("/global", adminOrReadOnly)
	globals.GET("", categoryHandler.ListGlobalCategories)
	globals.POST("", categoryHandler.CreateGlobalCategory)
	globals.PUT("/:id", categoryHandler.UpdateGlobalCategory)
	globals.DELETE("/:id", categoryHandler.DeleteGlobalCategory)

	movements := protected.Group("/movements")
	movements.GET("", movementHandler.ListMovements)
	movements.POST("", movementHandler.CreateMovement)
	movements.GET("/:id", movementHandler.GetMovement)
	movements.PUT("/:id", movementHandler.UpdateMovement)
	movements.DELETE("/:id", movementHandler.DeleteMovement)

	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	protected.GET("/reports/summary", reportHandler.GetSummary)

	roles := protected.Group("/roles", adminOrReadOnly)
	roles.GET("", roleHandler.ListRoles)
	roles.GET("/:id", roleHandler.GetRole)
	roles.PUT("/:id", roleHandler.UpdateRole)

	admin := protected.Group("/admin")
	admin.GET("/users", middleware.RequirePermission(svc.Users, middleware.IsAdmin), adminHandler.ListUsers)
	admin.GET("/users/:id", middleware.RequirePermission(svc.Users, middleware.IsAdmin), adminHandler.GetUserDetail)
	admin.GET("/dashboard", middleware.RequirePermission(svc.Users, middleware.IsAdminUser), adminHandler.GetDashboard)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
