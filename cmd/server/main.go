package main

import (
	"os"
	"time"

	"github.com/Shubharvey/brickbook-sub001/config"
	"github.com/Shubharvey/brickbook-sub001/internal/handler"
	"github.com/Shubharvey/brickbook-sub001/internal/middleware"
	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/service"
	"github.com/Shubharvey/brickbook-sub001/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Configuration
	config.LoadConfig()

	if config.AppConfig.Server.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// 2. Connect to Database
	database.Connect()

	// 3. Auto-Migrate Models
	log.Info().Msg("Running migrations")
	err := database.DB.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.AdvancePayment{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
	log.Info().Msg("Migrations completed")

	// 3a. Seed Data
	database.SeedOwner()

	// 4. Initialize Router
	if config.AppConfig.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	svc := service.NewService(database.DB)
	svc.InvoicePrefix = config.AppConfig.Defaults.InvoicePrefix
	svc.ReceiptPrefix = config.AppConfig.Defaults.ReceiptPrefix

	// 5. Setup Routes
	authHandler := &handler.AuthHandler{}
	authRoutes := r.Group("/api/v1/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	userRoutes := r.Group("/api/v1/user")
	userRoutes.Use(middleware.AuthMiddleware())
	{
		userRoutes.GET("/profile", authHandler.Profile)
		userRoutes.PUT("/profile", authHandler.UpdateProfile)
		userRoutes.PUT("/password", authHandler.ChangePassword)
	}

	customerHandler := &handler.CustomerHandler{Svc: svc}
	customerRoutes := r.Group("/api/v1/customers")
	customerRoutes.Use(middleware.AuthMiddleware())
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.ListCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomer)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", customerHandler.DeleteCustomer)
		customerRoutes.GET("/:id/ledger", customerHandler.GetCustomerLedger)
	}

	saleHandler := &handler.SaleHandler{Svc: svc}
	saleRoutes := r.Group("/api/v1/sales")
	saleRoutes.Use(middleware.AuthMiddleware())
	{
		saleRoutes.POST("", saleHandler.CreateSale)
		saleRoutes.GET("", saleHandler.ListSales)
		saleRoutes.GET("/:id", saleHandler.GetSale)
		saleRoutes.PUT("/:id/delivery-status", saleHandler.UpdateDeliveryStatus)
	}

	paymentHandler := &handler.PaymentHandler{Svc: svc}
	paymentRoutes := r.Group("/api/v1/payments")
	paymentRoutes.Use(middleware.AuthMiddleware())
	{
		paymentRoutes.POST("", paymentHandler.RecordPayment)
		paymentRoutes.GET("", paymentHandler.ListPayments)
	}

	advanceHandler := &handler.AdvanceHandler{Svc: svc}
	advanceRoutes := r.Group("/api/v1/advance")
	advanceRoutes.Use(middleware.AuthMiddleware())
	{
		advanceRoutes.GET("", advanceHandler.ListAdvances)
		advanceRoutes.POST("", advanceHandler.AddAdvance)
		advanceRoutes.GET("/reconcile", advanceHandler.Reconcile)
	}

	dueHandler := &handler.DueHandler{Svc: svc}
	dueRoutes := r.Group("/api/v1/dues")
	dueRoutes.Use(middleware.AuthMiddleware())
	{
		dueRoutes.GET("", dueHandler.ListDues)
		dueRoutes.POST("/advance-deduction", dueHandler.AdvanceDeduction)
	}

	reportHandler := &handler.ReportHandler{}
	reportRoutes := r.Group("/api/v1/reports")
	reportRoutes.Use(middleware.AuthMiddleware())
	{
		reportRoutes.GET("/sales", reportHandler.GetSalesReport)
		reportRoutes.GET("/customers", reportHandler.GetCustomerReport)
	}
	r.GET("/api/v1/dashboard", middleware.AuthMiddleware(), reportHandler.GetDashboardStats)

	publicHandler := &handler.PublicHandler{}
	r.GET("/api/v1/public/config", publicHandler.GetPublicConfig)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 6. Start Server
	port := config.AppConfig.Server.Port
	log.Info().Str("port", port).Msg("Server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to run server")
	}
}
