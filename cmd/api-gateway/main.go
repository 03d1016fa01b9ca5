package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/aulavista/horarios-api/api/swagger"
	"github.com/aulavista/horarios-api/internal/handler"
	internalmiddleware "github.com/aulavista/horarios-api/internal/middleware"
	"github.com/aulavista/horarios-api/internal/repository"
	"github.com/aulavista/horarios-api/internal/service"
	"github.com/aulavista/horarios-api/internal/timegrid"
	"github.com/aulavista/horarios-api/pkg/blobstore"
	"github.com/aulavista/horarios-api/pkg/config"
	"github.com/aulavista/horarios-api/pkg/logger"
	corsmiddleware "github.com/aulavista/horarios-api/pkg/middleware/cors"
	reqidmiddleware "github.com/aulavista/horarios-api/pkg/middleware/requestid"
	"github.com/aulavista/horarios-api/pkg/storage"
)

// @title Horarios API
// @version 1.0.0
// @description Weekly timetable editor backend for primary schools
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

	store, err := buildStore(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init snapshot store", "driver", cfg.Store.Driver, "error", err)
	}

	grid, err := timegrid.New(cfg.School)
	if err != nil {
		logr.Sugar().Fatalw("invalid school day configuration", "error", err)
	}

	data := service.NewDataService(grid, cfg.School.SlotCapacity,
		repository.NewTeacherRepository(store, logr),
		repository.NewGroupRepository(store, logr),
		repository.NewScheduleRepository(store, logr),
		logr)
	if err := data.Initialize(context.Background()); err != nil {
		logr.Sugar().Fatalw("failed to load application state", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.Auth, validate, logr)
	teacherSvc := service.NewTeacherService(data, logr)
	groupSvc := service.NewGroupService(data, logr)
	timetableSvc := service.NewTimetableService(data, logr)
	conflictSvc := service.NewConflictService(data, metricsSvc, logr)
	snapshotSvc := service.NewSnapshotService(data, store, logr)

	localStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(data, localStorage, signer, cfg.Exports.SignedURLTTL, logr)
	if removed := exportSvc.CleanupExpired(); removed > 0 {
		logr.Info("stale export files removed", zap.Int("count", removed))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "store": cfg.Store.Driver})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, metricsSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	snapshotHandler := handler.NewSnapshotHandler(snapshotSvc)
	exportHandler := handler.NewExportHandler(exportSvc, cfg.APIPrefix)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	// Downloads authenticate through the signed token instead of a header.
	api.GET("/exports/download", exportHandler.Download)

	protected := api.Group("")
	protected.Use(internalmiddleware.JWT(authSvc, cfg.Auth.Enabled))
	{
		protected.GET("/teachers", teacherHandler.List)
		protected.POST("/teachers", teacherHandler.Create)
		protected.GET("/teachers/:id", teacherHandler.Get)
		protected.PUT("/teachers/:id", teacherHandler.Rename)
		protected.DELETE("/teachers/:id", teacherHandler.Delete)

		protected.GET("/groups", groupHandler.List)
		protected.POST("/groups", groupHandler.Create)
		protected.GET("/groups/:name", groupHandler.Get)
		protected.PATCH("/groups/:name", groupHandler.Update)
		protected.DELETE("/groups/:name", groupHandler.Delete)
		protected.POST("/groups/:name/rename", groupHandler.Rename)
		protected.PUT("/groups/:name/subjects/:subject", groupHandler.SetSubject)
		protected.DELETE("/groups/:name/subjects/:subject", groupHandler.RemoveSubject)
		protected.GET("/groups/:name/timetable", timetableHandler.Get)
		protected.GET("/timetable", timetableHandler.Full)

		protected.POST("/timetable/place", timetableHandler.Place)
		protected.POST("/timetable/remove", timetableHandler.Remove)

		protected.GET("/conflicts", conflictHandler.List)

		protected.GET("/snapshot", snapshotHandler.Export)
		protected.POST("/snapshot", snapshotHandler.Import)

		protected.POST("/exports", exportHandler.Create)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// buildStore selects the snapshot store backend from configuration.
func buildStore(cfg *config.Config, logr *zap.Logger) (blobstore.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return blobstore.NewMemoryStore(), nil
	case config.StoreDriverFilesystem:
		return blobstore.NewFilesystemStore(cfg.Store.Dir)
	case config.StoreDriverPostgres:
		db, err := blobstore.NewPostgresDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		return blobstore.NewPostgresStore(db)
	case config.StoreDriverRedis:
		client, err := blobstore.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return blobstore.NewRedisStore(client, cfg.Store.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
