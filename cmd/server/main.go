package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/boatyard/internal/config"
	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/handler"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/bitfantasy/boatyard/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
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
	// 加载 .env（不存在时忽略）
	godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting boatyard-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
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
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
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
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1/erp")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 零件与库存
		parts := v1.Group("/parts")
		{
			parts.GET("", h.Part.ListParts)
			parts.POST("", h.Part.CreatePart)
			parts.GET("/reorder-alerts", h.Part.ReorderAlerts)
			parts.GET("/:id", h.Part.GetPart)
			parts.PUT("/:id", h.Part.UpdatePart)
			parts.DELETE("/:id", h.Part.DeletePart)
			parts.POST("/:id/adjust-stock", h.Part.AdjustStock)
			parts.GET("/:id/transactions", h.Part.ListTransactions)
		}

		// 供应商
		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", h.Supplier.ListSuppliers)
			suppliers.POST("", h.Supplier.CreateSupplier)
			suppliers.GET("/:id", h.Supplier.GetSupplier)
			suppliers.PUT("/:id", h.Supplier.UpdateSupplier)
			suppliers.DELETE("/:id", h.Supplier.DeleteSupplier)
			suppliers.GET("/:id/parts", h.Supplier.ListLinks)
			suppliers.POST("/:id/parts", h.Supplier.CreateLink)
		}

		// 供货关系
		v1.PUT("/supplier-parts/:linkId", h.Supplier.UpdateLink)
		v1.DELETE("/supplier-parts/:linkId", h.Supplier.DeleteLink)

		// 船型
		boatTypes := v1.Group("/boat-types")
		{
			boatTypes.GET("", h.Boat.ListBoatTypes)
			boatTypes.POST("", h.Boat.CreateBoatType)
			boatTypes.GET("/:id", h.Boat.GetBoatType)
			boatTypes.PUT("/:id", h.Boat.UpdateBoatType)
			boatTypes.DELETE("/:id", h.Boat.DeleteBoatType)
		}

		// 生产船只
		boats := v1.Group("/boats")
		{
			boats.GET("", h.Boat.ListBoats)
			boats.POST("", h.Boat.CreateBoat)
			boats.GET("/:id", h.Boat.GetBoat)
			boats.PUT("/:id", h.Boat.UpdateBoat)
			boats.DELETE("/:id", h.Boat.DeleteBoat)
		}

		// 需求计算
		requirements := v1.Group("/requirements")
		{
			requirements.POST("/calculate", middleware.RequirePermission("erp:requirements:calculate"), h.Requirements.Calculate)
			requirements.GET("/latest", h.Requirements.Latest)
			requirements.GET("/export", h.Requirements.Export)
			requirements.GET("/runs", h.Requirements.ListRuns)
			requirements.GET("/runs/:id", h.Requirements.GetRun)
			requirements.GET("/runs/:id/analysis", h.Requirements.ByRun)
		}

		// 采购订单
		pos := v1.Group("/purchase-orders")
		{
			pos.GET("", h.PO.ListPOs)
			pos.POST("", h.PO.CreatePO)
			pos.POST("/schedule", h.PO.Schedule)
			pos.POST("/commit", middleware.RequireRole("erp_admin"), h.PO.Commit)
			pos.POST("/generate", middleware.RequireRole("erp_admin"), h.PO.Generate)
			pos.GET("/export", h.PO.Export)
			pos.GET("/:id", h.PO.GetPO)
			pos.PUT("/:id", h.PO.UpdatePO)
			pos.DELETE("/:id", h.PO.DeletePO)
			pos.POST("/:id/transition", middleware.RequireRole("erp_admin"), h.PO.TransitionPO)
		}
	}
}
