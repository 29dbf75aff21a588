package api

import (
	"context"
	"net/http"
	"time"

	"pantry-service/internal/api/handlers/health"
	pantryHandler "pantry-service/internal/api/handlers/pantry"
	"pantry-service/internal/api/middleware"
	"pantry-service/internal/core/ai/cache"
	"pantry-service/internal/core/ai/service"
	"pantry-service/internal/core/extract"
	"pantry-service/internal/core/reconcile"
	"pantry-service/internal/infrastructure/config"
	"pantry-service/internal/infrastructure/store"
	"pantry-service/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)：逐字稿與更新批次都是小 payload
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, st store.Store, extractionCache cache.Cache) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制與重複請求去重
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Deduplication(cfg))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化 AI 服務與萃取器
	aiService := service.NewService(cfg, extractionCache)
	extractor := extract.NewLLMExtractor(aiService)

	// 初始化調和引擎
	engine := reconcile.NewEngine(st, st, extractor)

	handler := pantryHandler.NewHandler(engine, st)

	// 全局中間件：設置請求超時與配置
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Set("config", cfg)
		c.Set("ai_service", aiService)

		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組，全部需要認證
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg))
	{
		// 庫存調和
		inventoryGroup := api.Group("/inventory")
		{
			// 逐字稿 → 結構化更新候選
			inventoryGroup.POST("/reconcile", handler.HandleReconcileTranscript)

			// 套用更新批次
			inventoryGroup.POST("/updates", handler.HandleApplyUpdates)
		}

		// 型錄
		api.GET("/catalog", handler.HandleListCatalog)

		// 家庭
		householdGroup := api.Group("/households")
		{
			householdGroup.POST("", handler.HandleCreateHousehold)
			householdGroup.GET("/current", handler.HandleCurrentHousehold)
			householdGroup.POST("/members", handler.HandleAddMember)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
