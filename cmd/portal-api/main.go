package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fms-portal/suggestion-api/api/swagger"
	"github.com/fms-portal/suggestion-api/internal/handler"
	"github.com/fms-portal/suggestion-api/internal/middleware"
	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/internal/repository"
	"github.com/fms-portal/suggestion-api/internal/service"
	"github.com/fms-portal/suggestion-api/internal/sheet"
	"github.com/fms-portal/suggestion-api/pkg/cache"
	"github.com/fms-portal/suggestion-api/pkg/config"
	"github.com/fms-portal/suggestion-api/pkg/database"
	"github.com/fms-portal/suggestion-api/pkg/export"
	"github.com/fms-portal/suggestion-api/pkg/logger"
	corsmiddleware "github.com/fms-portal/suggestion-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fms-portal/suggestion-api/pkg/middleware/requestid"
)

// @title FMS Suggestion Portal API
// @version 1.0.0
// @description Suggestion box portal for the Faculty of Management Sciences
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	validate := validator.New()

	adminRepo := repository.NewAdminRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	snapshot := repository.NewSnapshot()
	sheetClient := sheet.NewClient(cfg.Sheet, logr)

	metricsService := service.NewMetricsService()
	sheetClient.SetObserver(metricsService.ObserveSheetCall)
	cacheRepo.SetLookupObserver(metricsService.RecordCacheOperation)

	authService := service.NewAuthService(adminRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "fms-suggestion-portal",
		Audience:           []string{"fms-suggestion-portal"},
	})
	suggestionService := service.NewSuggestionService(sheetClient, snapshot, adminRepo, logr)
	submissionService := service.NewSubmissionService(sheetClient, validate, logr)
	wizardService := service.NewWizardService(cacheRepo, cfg.Wizard, logr)
	reportService := service.NewReportService(suggestionService, export.NewPDFExporter(), export.NewCSVExporter(), cfg.Reports.Title, logr)

	authHandler := handler.NewAuthHandler(authService)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService)
	publicHandler := handler.NewPublicHandler(submissionService, wizardService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	public := api.Group("/public")
	{
		public.GET("/departments", publicHandler.Departments)
		public.POST("/suggestions", publicHandler.Submit)
		public.GET("/track", publicHandler.Track)
		public.POST("/wizard", publicHandler.StartWizard)
		public.GET("/wizard/:id", publicHandler.GetWizard)
		public.DELETE("/wizard/:id", publicHandler.AbandonWizard)
		public.POST("/wizard/:id/role", publicHandler.ChooseRole)
		public.POST("/wizard/:id/department", publicHandler.ChooseDepartment)
		public.POST("/wizard/:id/back", publicHandler.WizardBack)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		secured := auth.Group("", middleware.JWT(authService))
		secured.POST("/logout", authHandler.Logout)
		secured.POST("/change-password", authHandler.ChangePassword)
		secured.GET("/me", authHandler.Me)

		admin := secured.Group("", middleware.RequireAccessLevel(models.AccessAll, models.AccessSuperAdmin))
		admin.GET("/history", authHandler.LoginHistory)
		admin.GET("/failed-attempts", authHandler.FailedAttempts)
	}

	suggestions := api.Group("/suggestions", middleware.JWT(authService))
	{
		suggestions.GET("", suggestionHandler.List)
		suggestions.GET("/status", suggestionHandler.Status)
		suggestions.POST("/reload", suggestionHandler.Reload)
		suggestions.GET("/:id", suggestionHandler.Get)
		// Respond audits in the service layer, where the suggestion id is
		// known.
		suggestions.POST("/:id/response", middleware.RequireResponder(), suggestionHandler.Respond)
	}

	reports := api.Group("/reports", middleware.JWT(authService))
	{
		reports.GET("/suggestions",
			middleware.Audit(adminRepo, models.AuditActionExport, "report"),
			reportHandler.Generate,
		)
	}

	system := api.Group("/system", middleware.JWT(authService), middleware.RequireAccessLevel(models.AccessSuperAdmin))
	{
		system.GET("/metrics", metricsHandler.System)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
