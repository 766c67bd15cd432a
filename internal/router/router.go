// internal/router/router.go
package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/handlers"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/middleware"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

// Dependencies are constructed by the caller and shared by every handler.
type Dependencies struct {
	DB           *gorm.DB
	Config       *config.Config
	Translator   *i18n.Translator
	Logger       *logrus.Logger
	Clock        services.Clock
	RateLimiters *middleware.RateLimiters
}

func Initialize(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil || deps.Config == nil || deps.Translator == nil {
		return nil, errors.New("router: database, config and translator are required")
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Clock == nil {
		deps.Clock = services.SystemClock{}
	}

	cfg := deps.Config
	db := deps.DB

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	// Initialize services
	pricing := services.NewPricing(cfg.Pricing)
	tokens := utils.NewTokenManager(cfg.JWT.SecretKey)
	storageService, err := services.NewStorageService(cfg, deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	authService := services.NewAuthService(db, cfg, tokens, deps.Clock)
	userService := services.NewUserService(db)
	catalogService := services.NewCatalogService(db, pricing, cfg.Inventory)
	salesService := services.NewSalesService(db, deps.Clock, location)
	revertService := services.NewRevertService(db, deps.Clock)
	reportService := services.NewReportService(db, deps.Clock, location, cfg.Report)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Session)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(catalogService)
	saleHandler := handlers.NewSaleHandler(salesService)
	revertHandler := handlers.NewRevertHandler(revertService)
	reportHandler := handlers.NewReportHandler(reportService)
	uploadHandler := handlers.NewUploadHandler(storageService)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	}
	r.Use(middleware.I18nMiddleware(deps.Translator))
	if deps.RateLimiters != nil {
		r.Use(deps.RateLimiters.General.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		storage := "local"
		if storageService.UsesS3() {
			storage = "s3"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": cfg.Database.Driver(),
			"storage":  storage,
		})
	})

	login := r.Group("")
	if deps.RateLimiters != nil {
		login.Use(deps.RateLimiters.Auth.Middleware())
	}
	login.POST("/login", authHandler.Login)

	// Every route below requires a session; capabilities are checked per handler.
	protected := r.Group("")
	protected.Use(middleware.AuthRequired(authService, cfg.Session.CookieName))
	{
		protected.GET("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)

		// Catalog
		protected.GET("/", productHandler.Index)
		protected.GET("/products/:id", productHandler.GetProduct)
		protected.POST("/add", productHandler.CreateProduct)
		protected.GET("/edit/:id", productHandler.EditForm)
		protected.POST("/edit/:id", productHandler.UpdateProduct)
		protected.POST("/delete/:id", productHandler.DeleteProduct)
		protected.GET("/search", productHandler.Search)
		protected.POST("/search", productHandler.Search)

		uploads := protected.Group("")
		if deps.RateLimiters != nil {
			uploads.Use(deps.RateLimiters.Upload.Middleware())
		}
		uploads.POST("/upload-image", uploadHandler.UploadImage)
		uploads.POST("/delete-image", uploadHandler.DeleteImage)

		// Sales
		protected.GET("/sell", saleHandler.SellOptions)
		protected.POST("/sell", saleHandler.Sell)
		protected.GET("/recent-sales", saleHandler.RecentSales)
		protected.GET("/export", saleHandler.ExportSales)

		// Reports
		protected.GET("/report", reportHandler.Report)
		protected.POST("/report", reportHandler.Report)
		protected.GET("/export_detailed_report", reportHandler.ExportDetailed)

		// Reverts
		protected.POST("/revert-sale/:id", revertHandler.RevertSale)
		protected.GET("/revert-history", revertHandler.RevertHistory)
		protected.GET("/sale-details/:id", revertHandler.SaleDetails)

		// Users
		protected.POST("/create-employee", userHandler.CreateEmployee)
		protected.GET("/manage-users", userHandler.ManageUsers)
		protected.POST("/delete-user/:id", userHandler.DeleteUser)
		protected.POST("/change-password", userHandler.ChangePassword)
	}

	if !storageService.UsesS3() {
		r.Static("/uploads", cfg.Server.UploadDir)
	}

	return r, nil
}
