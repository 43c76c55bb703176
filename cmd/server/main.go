package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/checosdovalina/gelag-sub002/internal/config"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/handler"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/checosdovalina/gelag-sub002/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting formatos service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Fatal("Database migration failed", zap.Error(err))
	}
	if err := seedCatalog(db); err != nil {
		zapLogger.Warn("Recipe catalog seed warning", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = initRedis(cfg.Redis)
	}

	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("MinIO unavailable, signature storage disabled", zap.Error(err))
			minioClient = nil
		}
	}

	repos := repository.NewRepositories(db)

	var source service.RecipeSource
	if cfg.Recipes.Source == "remote" {
		source = service.NewRemoteSource(cfg.Recipes.RemoteBaseURL, cfg.Recipes.Timeout, rdb, cfg.Recipes.CacheTTL, zapLogger)
	} else {
		source = service.NewCatalogSource(repos.Recipe)
	}

	services := service.NewServices(db, repos, source, zapLogger, cfg.Workflow.DeleteRoles)
	if minioClient != nil {
		services.Signatures = service.NewSignatureService(minioClient, cfg.MinIO.Bucket, services.ProductionForms)
	}
	handlers := handler.NewHandlers(services, repos)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Duplicate-key violations must surface as gorm.ErrDuplicatedKey so
		// folio contention can be retried.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.FormTemplate{},
		&entity.FormEntry{},
		&entity.ProductionForm{},
		&entity.FolioCounter{},
		&entity.FormActionLog{},
		&entity.Recipe{},
		&entity.RecipeIngredient{},
	); err != nil {
		return err
	}

	migrationSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_production_forms_template_status ON production_forms(template_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_form_action_logs_form_created ON form_action_logs(form_id, created_at)",
		"ALTER TABLE production_forms DROP CONSTRAINT IF EXISTS production_forms_status_check",
		"ALTER TABLE production_forms ADD CONSTRAINT production_forms_status_check CHECK (status IN ('draft', 'in_progress', 'pending_review', 'completed'))",
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("migration %q: %w", sql, err)
		}
	}
	return nil
}

// seedCatalog installs the base recipes on an empty catalog.
func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Recipe{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []entity.Recipe{
		{
			ProductID: "conito",
			Name:      "Conito",
			Ingredients: []entity.RecipeIngredient{
				{Name: "Leche de Vaca", Unit: "kg", LiterFactor: 0.5, Position: 0},
				{Name: "Azúcar", Unit: "kg", LiterFactor: 0.2, Position: 1},
				{Name: "Glucosa", Unit: "kg", LiterFactor: 0.05, Position: 2},
				{Name: "Bicarbonato", Unit: "kg", LiterFactor: 0.002, Position: 3},
			},
		},
		{
			ProductID: "cajeta-tradicional",
			Name:      "Cajeta Tradicional",
			Ingredients: []entity.RecipeIngredient{
				{Name: "Leche de Cabra", Unit: "kg", LiterFactor: 0.6, Position: 0},
				{Name: "Azúcar", Unit: "kg", LiterFactor: 0.25, Position: 1},
				{Name: "Bicarbonato", Unit: "kg", LiterFactor: 0.002, Position: 2},
			},
		},
	}
	for i := range seeds {
		for j := range seeds[i].Ingredients {
			seeds[i].Ingredients[j].ID = uuid.New().String()
			seeds[i].Ingredients[j].ProductID = seeds[i].ProductID
		}
		if err := db.Create(&seeds[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": Version, "build_time": BuildTime})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		forms := api.Group("/production-forms")
		{
			forms.GET("", h.ProductionForm.List)
			forms.POST("", h.ProductionForm.Create)
			forms.GET("/:id", h.ProductionForm.Get)
			forms.DELETE("/:id", h.ProductionForm.Delete)
			forms.PATCH("/:id/field", h.ProductionForm.UpdateField)
			forms.POST("/:id/status", h.ProductionForm.ChangeStatus)
			forms.PUT("/:id/folios", h.ProductionForm.UpdateFolios)
			forms.GET("/:id/history", h.ProductionForm.History)
			forms.POST("/:id/signature", h.Signature.Upload)
			forms.GET("/:id/signature", h.Signature.URL)
		}

		templates := api.Group("/templates")
		{
			templates.GET("", h.Template.List)
			templates.POST("", h.Template.Create)
			templates.GET("/:id", h.Template.Get)
			templates.POST("/:id/entries", h.Template.CreateEntry)
			templates.GET("/:id/entries", h.Template.ListEntries)
			templates.POST("/:id/export", h.Export.Export)
		}

		entries := api.Group("/entries")
		{
			entries.POST("/:id/sign", h.Template.SignEntry)
			entries.POST("/:id/review", h.Template.ReviewEntry)
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("", h.Catalog.List)
			recipes.GET("/:productId", h.Catalog.Get)
			recipes.PUT("/:productId", h.Catalog.Upsert)
		}

		users := api.Group("/users")
		{
			users.GET("", h.User.List)
			users.GET("/:id", h.User.Get)
		}
	}
}
