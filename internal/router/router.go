package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workspace-service/internal/client"
	"workspace-service/internal/config"
	"workspace-service/internal/handler"
	"workspace-service/internal/metrics"
	"workspace-service/internal/middleware"
	"workspace-service/internal/notify"
	"workspace-service/internal/repository"
	"workspace-service/internal/service"
)

// Config holds router dependencies
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Notifier       notify.Notifier
	NotifierDriver string
	Generator      client.TextGenerator
	Presence       config.PresenceConfig
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer       prometheus.Gatherer
	BasePath       string
	AllowedOrigins string
}

func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	presenceRepo := repository.NewPresenceRepository(cfg.DB)
	itemRepo := repository.NewItemRepository(cfg.DB)

	presenceService := service.NewPresenceService(presenceRepo, cfg.Notifier, cfg.Metrics, cfg.Logger, cfg.Presence, nil)
	workspaceService := service.NewWorkspaceService()
	itemService := service.NewItemService(itemRepo, cfg.Notifier, cfg.Metrics, cfg.Logger)
	recipeService := service.NewRecipeService(itemRepo, cfg.Generator, cfg.Notifier, cfg.Metrics, cfg.Logger)

	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis, cfg.NotifierDriver)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	presenceHandler := handler.NewPresenceHandler(presenceService)
	ingredientHandler := handler.NewIngredientHandler(itemService)
	preferenceHandler := handler.NewPreferenceHandler(itemService)
	recipeHandler := handler.NewRecipeHandler(recipeService)
	streamHandler := handler.NewStreamHandler(presenceService, cfg.Metrics, cfg.Logger)

	metricsHandler := gin.WrapH(promhttp.Handler())
	if cfg.Gatherer != nil {
		metricsHandler = gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Probes are served at the root for kubelet and under the base path for the ingress.
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler)

	basePath := strings.TrimRight(cfg.BasePath, "/")
	api := r.Group(basePath)
	if basePath != "" {
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)
		api.GET("/metrics", metricsHandler)
	}

	api.GET("/ws/workspaces/:workspaceId", streamHandler.HandleStream)

	api.POST("/workspaces", workspaceHandler.CreateWorkspace)

	workspaces := api.Group("/workspaces/:workspaceId")
	{
		workspaces.GET("", workspaceHandler.GetWorkspace)

		workspaces.GET("/presence", presenceHandler.ListOnline)
		workspaces.POST("/presence/reap", presenceHandler.Reap)
		workspaces.PUT("/presence/:session", presenceHandler.Heartbeat)
		workspaces.DELETE("/presence/:session", presenceHandler.Leave)

		workspaces.GET("/ingredients", ingredientHandler.ListIngredients)
		workspaces.POST("/ingredients", ingredientHandler.AddIngredient)
		workspaces.PUT("/ingredients/:itemId", ingredientHandler.RenameIngredient)
		workspaces.DELETE("/ingredients/:itemId", ingredientHandler.DeleteIngredient)

		workspaces.GET("/preferences", preferenceHandler.ListPreferences)
		workspaces.POST("/preferences", preferenceHandler.TogglePreference)

		workspaces.GET("/recipes", recipeHandler.LatestRecipes)
		workspaces.POST("/recipes", recipeHandler.SuggestRecipes)
	}

	return r
}
