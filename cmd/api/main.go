package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/david16260/gestor-documental/api/swagger"
	"github.com/david16260/gestor-documental/internal/handler"
	"github.com/david16260/gestor-documental/internal/middleware"
	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/repository"
	"github.com/david16260/gestor-documental/internal/service"
	"github.com/david16260/gestor-documental/pkg/cache"
	"github.com/david16260/gestor-documental/pkg/config"
	"github.com/david16260/gestor-documental/pkg/database"
	"github.com/david16260/gestor-documental/pkg/jobs"
	"github.com/david16260/gestor-documental/pkg/logger"
	corsmiddleware "github.com/david16260/gestor-documental/pkg/middleware/cors"
	reqidmiddleware "github.com/david16260/gestor-documental/pkg/middleware/requestid"
	"github.com/david16260/gestor-documental/pkg/storage"
)

// @title Gestor Documental API
// @version 1.0.0
// @description Gestión documental con deduplicación, clasificación e índices foliados
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, folio cache disabled", zap.Error(err))
		redisClient = nil
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare storage directory", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	expedienteRepo := repository.NewExpedienteRepository(db)
	fuidRepo := repository.NewFUIDRepository(db)
	trdRepo := repository.NewTRDRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, logr)

	classifier := service.NewClassifier(cfg.Classifier.Strategy, logr)
	fileValidator := service.NewValidatorService(cfg.Uploads.RequireSignature, logr)
	fetcher := service.NewFetcherService(cfg.Fetcher.UserAgent, cfg.Fetcher.Timeout, cfg.Uploads.MaxFileSizeBytes, logr)
	comprobanteSvc := service.NewComprobanteService(docRepo, fileStorage, cfg.Uploads.HashAlgorithm, logr)
	folioSvc := service.NewFolioService(docRepo, redisClient, cfg.Folio.CacheTTL, logr)
	expedienteSvc := service.NewExpedienteService(expedienteRepo, docRepo, validate, logr)
	fuidSvc := service.NewFUIDService(fuidRepo, expedienteRepo, validate, logr)
	trdSvc := service.NewTRDService(trdRepo, fileValidator, fileStorage, logr)
	documentSvc := service.NewDocumentService(docRepo, fileStorage, signer, fileValidator, classifier, fetcher, userRepo, folioSvc, comprobanteSvc, logr, service.DocumentServiceConfig{
		MaxFileSize:       cfg.Uploads.MaxFileSizeBytes,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
		HashAlgorithm:     cfg.Uploads.HashAlgorithm,
		APIPrefix:         cfg.APIPrefix,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var comprobanteQueue *jobs.Queue
	if cfg.Comprobantes.Enabled {
		comprobanteQueue = jobs.NewQueue("comprobantes", func(jctx context.Context, job jobs.Job) error {
			if err := comprobanteSvc.HandleJob(jctx, job); err != nil {
				return err
			}
			metricsSvc.RecordComprobanteRender()
			return nil
		}, jobs.QueueConfig{
			Workers:    cfg.Comprobantes.WorkerConcurrency,
			MaxRetries: cfg.Comprobantes.WorkerRetries,
			Logger:     logr,
		})
		comprobanteSvc.AttachQueue(comprobanteQueue)
		comprobanteQueue.Start(ctx)
		defer comprobanteQueue.Stop()
	}

	if cfg.Comprobantes.CleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Comprobantes.CleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					removed, err := fileStorage.CleanupOlderThan(service.ComprobanteDir, cfg.Comprobantes.CleanupTTL)
					if err != nil {
						logr.Warn("comprobante cleanup failed", zap.Error(err))
						continue
					}
					if len(removed) > 0 {
						logr.Info("comprobante cleanup", zap.Int("removed", len(removed)))
					}
				}
			}
		}()
	}

	authHandler := handler.NewAuthHandler(authSvc, metricsSvc)
	userHandler := handler.NewUserHandler(userSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc, folioSvc, expedienteSvc, metricsSvc)
	xmlHandler := handler.NewXMLHandler(comprobanteSvc, metricsSvc)
	expedienteHandler := handler.NewExpedienteHandler(expedienteSvc)
	fuidHandler := handler.NewFUIDHandler(fuidSvc)
	trdHandler := handler.NewTRDHandler(trdSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		authed := auth.Group("", middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	users := api.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
		users.GET("/me", authHandler.Me)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.SelfMarker), userHandler.Get)
		users.PUT("/asignar-rol/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.AssignRole)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)
	}

	documentos := api.Group("/documentos", middleware.JWT(authSvc))
	{
		documentos.POST("/upload", middleware.RequireRoles(models.RoleAdmin, models.RoleEditor), documentHandler.Upload)
		documentos.POST("/desde-url", middleware.RequireRoles(models.RoleAdmin, models.RoleEditor), documentHandler.IngestFromURL)
		documentos.GET("", documentHandler.List)
		documentos.GET("/historial", documentHandler.History)
		documentos.GET("/indice_foliado", documentHandler.FolioIndex)
		documentos.GET("/:id", documentHandler.Get)
		documentos.GET("/:id/descargar-url", documentHandler.DownloadURL)
		documentos.GET("/:id/descargar", documentHandler.Download)
	}

	xml := api.Group("/xml", middleware.JWT(authSvc))
	{
		xml.GET("/documento/:id", xmlHandler.Document)
		xml.GET("/documento/:id/descargar", xmlHandler.DownloadDocument)
		xml.GET("/expediente/usuario/:id", xmlHandler.Expediente)
		xml.GET("/expediente/usuario/:id/descargar", xmlHandler.DownloadExpediente)
	}

	expedientes := api.Group("/expedientes", middleware.JWT(authSvc))
	{
		expedientes.POST("", expedienteHandler.Create)
		expedientes.GET("", expedienteHandler.List)
		expedientes.GET("/:id", expedienteHandler.Get)
		expedientes.POST("/:id/documentos", middleware.RequireRoles(models.RoleAdmin, models.RoleEditor), expedienteHandler.AddDocument)
		expedientes.GET("/:id/documentos", expedienteHandler.Documents)
		expedientes.PUT("/:id/estado", expedienteHandler.UpdateStatus)
	}

	fuid := api.Group("/fuid", middleware.JWT(authSvc))
	{
		fuid.POST("", fuidHandler.Create)
		fuid.GET("", fuidHandler.List)
		fuid.GET("/:numero", fuidHandler.Get)
		fuid.PUT("/:numero", fuidHandler.Update)
		fuid.DELETE("/:numero", fuidHandler.Delete)
		fuid.GET("/:numero/verificar", fuidHandler.Verify)
	}

	trd := api.Group("/trd", middleware.JWT(authSvc))
	{
		trd.POST("/upload", middleware.RequireRoles(models.RoleAdmin), trdHandler.Upload)
		trd.GET("", trdHandler.List)
	}

	api.GET("/status", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), metricsHandler.Status)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
