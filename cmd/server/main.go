package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/cache"
	"github.com/gulfbridge/mortgage-crm-backend/internal/config"
	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/handlers"
	"github.com/gulfbridge/mortgage-crm-backend/internal/middleware"
	"github.com/gulfbridge/mortgage-crm-backend/internal/services"
	"github.com/gulfbridge/mortgage-crm-backend/internal/storage"
	"github.com/gulfbridge/mortgage-crm-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting GulfBridge Mortgage CRM Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// List cache is optional: a dead Redis degrades to uncached reads
	var listCache *cache.ListCache
	if cfg.Redis.Enabled {
		listCache, err = cache.NewListCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.WithError(err).Warn("List cache unavailable, continuing without caching")
			listCache = nil
		} else {
			defer listCache.Close()
			logger.Info("List cache connected")
		}
	}

	// Initialize object storage for uploaded documents and bank forms
	objectStore, err := storage.NewS3Store(context.Background(), cfg.Storage.Region, cfg.Storage.Bucket, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	sourceRepo := database.NewSourceRepository(db)
	bankProductRepo := database.NewBankProductRepository(db)
	leadRepo := database.NewLeadRepository(db)
	clientRepo := database.NewClientRepository(db)
	caseRepo := database.NewCaseRepository(db)
	documentRepo := database.NewDocumentRepository(db)
	bankFormRepo := database.NewBankFormRepository(db)
	statusChangeRepo := database.NewStatusChangeRepository(db)
	stageChangeRepo := database.NewStageChangeRepository(db)
	callLogRepo := database.NewCallLogRepository(db)
	noteRepo := database.NewNoteRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	authService := services.NewAuthService(userRepo, jwtService, cfg.Security.BcryptCost, logger)
	leadService := services.NewLeadService(leadRepo, clientRepo, documentRepo, statusChangeRepo, callLogRepo, noteRepo, listCache, logger)
	clientService := services.NewClientService(clientRepo, caseRepo, documentRepo, bankFormRepo, statusChangeRepo, callLogRepo, noteRepo, listCache, logger)
	caseService := services.NewCaseService(caseRepo, bankFormRepo, stageChangeRepo, callLogRepo, noteRepo, listCache, logger)
	checklistService := services.NewChecklistService(bankFormRepo, documentRepo, objectStore, logger)
	activityService := services.NewActivityService(callLogRepo, noteRepo, leadRepo, logger)
	settingsService := services.NewSettingsService(sourceRepo, bankProductRepo, logger)
	slaService := services.NewSLAService(leadRepo, logger)

	// Start the SLA breach sweep
	var cronService *services.CronService
	if cfg.SLA.Enabled {
		cronService = services.NewCronService(slaService, cfg.SLA.SweepSpec, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
	}
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	leadHandler := handlers.NewLeadHandler(leadService, activityService, logger)
	clientHandler := handlers.NewClientHandler(clientService, caseService, checklistService, activityService, logger)
	caseHandler := handlers.NewCaseHandler(caseService, checklistService, activityService, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsService, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware(jwtService, logger))
			{
				authProtected.GET("/profile", authHandler.Profile)
				authProtected.POST("/logout", authHandler.Logout)
			}
		}

		// Lead routes (protected)
		leads := v1.Group("/leads")
		leads.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			leads.POST("", leadHandler.Create)
			leads.GET("", leadHandler.List)
			leads.GET("/:id", leadHandler.Get)
			leads.POST("/:id/drop", leadHandler.Drop)
			leads.POST("/:id/convert", leadHandler.Convert)
			leads.POST("/:id/calls", leadHandler.LogCall)
			leads.POST("/:id/notes", leadHandler.AddNote)
		}

		// Client routes (protected)
		clients := v1.Group("/clients")
		clients.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			clients.POST("", clientHandler.Create)
			clients.GET("", clientHandler.List)
			clients.GET("/:id", clientHandler.Get)
			clients.PATCH("/:id", clientHandler.Update)
			clients.GET("/:id/eligibility", clientHandler.Eligibility)
			clients.POST("/:id/not-eligible", clientHandler.MarkNotEligible)
			clients.POST("/:id/not-proceeding", clientHandler.MarkNotProceeding)
			clients.POST("/:id/cases", clientHandler.CreateCase)
			clients.GET("/:id/cases", clientHandler.ListCases)
			clients.POST("/:id/documents", clientHandler.UploadDocument)
			clients.PUT("/:id/documents/:docId/status", clientHandler.SetDocumentStatus)
			clients.DELETE("/:id/documents/:docId", clientHandler.DeleteDocument)
			clients.GET("/:id/documents/:docId/download", clientHandler.DownloadDocument)
			clients.POST("/:id/calls", clientHandler.LogCall)
			clients.POST("/:id/notes", clientHandler.AddNote)
		}

		// Case routes (protected)
		cases := v1.Group("/cases")
		cases.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			cases.GET("/stages", caseHandler.Stages)
			cases.GET("", caseHandler.List)
			cases.GET("/:id", caseHandler.Get)
			cases.POST("/:id/advance", caseHandler.Advance)
			cases.POST("/:id/decline", caseHandler.Decline)
			cases.POST("/:id/withdraw", caseHandler.Withdraw)
			cases.PUT("/:id/stage", caseHandler.SetStage)
			cases.POST("/:id/bank-forms", caseHandler.UploadBankForms)
			cases.DELETE("/:id/bank-forms/:formId", caseHandler.DeleteBankForm)
			cases.GET("/:id/bank-forms/:formId/download", caseHandler.DownloadBankForm)
			cases.POST("/:id/calls", caseHandler.LogCall)
			cases.POST("/:id/notes", caseHandler.AddNote)
		}

		// Settings and user administration (admin only)
		admin := v1.Group("/settings")
		admin.Use(middleware.AuthMiddleware(jwtService, logger))
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/sources", settingsHandler.CreateSource)
			admin.GET("/sources", settingsHandler.ListSources)
			admin.PATCH("/sources/:id", settingsHandler.UpdateSource)
			admin.POST("/bank-products", settingsHandler.CreateBankProduct)
			admin.GET("/bank-products", settingsHandler.ListBankProducts)
			admin.POST("/bank-products/:id/deactivate", settingsHandler.DeactivateBankProduct)
		}

		users := v1.Group("/users")
		users.Use(middleware.AuthMiddleware(jwtService, logger))
		users.Use(middleware.RequireAdmin())
		{
			users.GET("", authHandler.ListUsers)
			users.POST("", authHandler.CreateUser)
			users.PATCH("/:id", authHandler.UpdateUser)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cronService != nil {
		cronService.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
