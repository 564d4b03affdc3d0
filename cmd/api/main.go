package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/culokossa/culib-api/api/swagger"
	"github.com/culokossa/culib-api/internal/handler"
	"github.com/culokossa/culib-api/internal/middleware"
	"github.com/culokossa/culib-api/internal/repository"
	"github.com/culokossa/culib-api/internal/seed"
	"github.com/culokossa/culib-api/internal/service"
	"github.com/culokossa/culib-api/pkg/cache"
	"github.com/culokossa/culib-api/pkg/config"
	"github.com/culokossa/culib-api/pkg/database"
	"github.com/culokossa/culib-api/pkg/export"
	"github.com/culokossa/culib-api/pkg/logger"
	corsmiddleware "github.com/culokossa/culib-api/pkg/middleware/cors"
	reqidmiddleware "github.com/culokossa/culib-api/pkg/middleware/requestid"
	"github.com/culokossa/culib-api/pkg/storage"
)

// @title CULib API
// @version 1.0.0
// @description Document library for the Centre Universitaire de Lokossa
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seed.Run(seedCtx, db, seed.Options{
		AdminUsername:   cfg.Seed.AdminUsername,
		AdminPassword:   cfg.Seed.AdminPassword,
		AdminName:       cfg.Seed.AdminName,
		SampleDocuments: cfg.Seed.SampleDocuments,
	}, logr); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to prepare database", "error", err)
	}
	cancel()

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}

	entityRepo := repository.NewEntityRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	yearRepo := repository.NewAcademicYearRepository(db)
	typeRepo := repository.NewDocumentTypeRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(redisClient)

	metricsSvc := service.NewMetricsService()
	catalogSvc := service.NewCatalogService(entityRepo, departmentRepo, programRepo, yearRepo, typeRepo, logr)
	documentSvc := service.NewDocumentService(documentRepo, entityRepo, departmentRepo, programRepo, yearRepo, typeRepo, store, cfg.Uploads.MaxFileSizeBytes, nil, logr)
	statsSvc := service.NewStatsService(statsRepo, documentRepo, metricsSvc, cfg.Stats.CacheTTL, cfg.Stats.TopDownloads, logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "culib-api",
	})
	reportSvc := service.NewReportService(statsSvc, documentSvc, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Stats.ReportTopLimit, logr)

	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc, store)
	statsHandler := handler.NewStatsHandler(statsSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		api.GET("/entities", catalogHandler.ListEntities)
		api.GET("/entities/:id", catalogHandler.GetEntity)
		api.GET("/departments", catalogHandler.ListDepartments)
		api.GET("/departments/:id", catalogHandler.GetDepartment)
		api.GET("/programs", catalogHandler.ListPrograms)
		api.GET("/programs/:id", catalogHandler.GetProgram)
		api.GET("/academic-years", catalogHandler.ListAcademicYears)
		api.GET("/document-types", catalogHandler.ListDocumentTypes)

		api.GET("/documents", documentHandler.List)
		api.GET("/documents/recent", documentHandler.Recent)
		api.GET("/documents/:id", documentHandler.Get)

		api.GET("/stats", statsHandler.Summary)
		api.GET("/stats/top-downloads", statsHandler.TopDownloaded)
		api.POST("/stats/track-download/:documentId", statsHandler.TrackDownload)
		api.POST("/stats/track-visit", statsHandler.TrackVisit)

		admin := api.Group("")
		admin.Use(middleware.JWT(authSvc))
		{
			admin.GET("/auth/me", authHandler.Me)
			admin.POST("/auth/logout", authHandler.Logout)
			admin.POST("/documents", documentHandler.Upload)
			admin.PUT("/documents/:id", documentHandler.Update)
			admin.DELETE("/documents/:id", documentHandler.Delete)
			admin.POST("/reports/generate", reportHandler.Generate)
			admin.GET("/metrics/snapshot", metricsHandler.Snapshot)
		}
	}

	r.GET("/uploads/:filename", documentHandler.ServeFile)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
