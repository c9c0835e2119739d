package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mysterie/creditgate/internal/module/image"
	"github.com/mysterie/creditgate/internal/module/ledger"
	"github.com/mysterie/creditgate/internal/module/marketing"
	"github.com/mysterie/creditgate/internal/module/places"
	"github.com/mysterie/creditgate/internal/module/quote"
	"github.com/mysterie/creditgate/internal/module/relay"
	"github.com/mysterie/creditgate/internal/module/vendorapi"
	sharedcache "github.com/mysterie/creditgate/internal/shared/cache"
	"github.com/mysterie/creditgate/internal/shared/config"
	"github.com/mysterie/creditgate/internal/shared/database"
	"github.com/mysterie/creditgate/internal/shared/logger"
	"github.com/mysterie/creditgate/internal/shared/metrics"
	"github.com/mysterie/creditgate/internal/shared/middleware"
	"github.com/mysterie/creditgate/internal/shared/storage"
)

// LoadConfig loads application configuration.
func LoadConfig() (*config.Config, error) {
	return config.Load()
}

// App wires configuration, stores, vendor clients and feature modules
// into one HTTP application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics

	// Modules
	ledgerHandler    *ledger.Handler
	imageHandler     *image.Handler
	marketingHandler *marketing.Handler
	placesHandler    *places.Handler
	quoteHandler     *quote.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Zap logger for module services
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New("creditgate"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	// Redis is optional: without it the quote listing just skips its
	// cache.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, quote cache disabled", "error", err)
		} else {
			app.redis = redisClient
		}
	}

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()

	return app, nil
}

// initModules initializes all application modules.
func (a *App) initModules() error {
	ledgerService := ledger.NewService(ledger.NewRepository(a.db), a.zapLogger, a.metrics)
	a.ledgerHandler = ledger.NewHandler(ledgerService)

	// Vendor clients
	openaiClient := vendorapi.NewOpenAIClient(&a.config.OpenAI, a.metrics)
	placesClient := vendorapi.NewPlacesClient(&a.config.Places, a.metrics)

	var generator vendorapi.ImageGenerator = openaiClient
	if a.config.Image.Generator == "flux" {
		generator = vendorapi.NewFluxClient(&a.config.Flux, a.metrics)
	}

	// Image module needs object storage for relayed results.
	store, err := storage.NewClient(&a.config.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	publisher := relay.New(store, relay.Config{
		KeyPrefix: a.config.Storage.KeyPrefix,
		Expiry:    a.config.Storage.PresignExpiry,
	}, a.zapLogger)

	a.imageHandler = image.NewHandler(image.NewService(
		generator,
		publisher,
		openaiClient,
		ledgerService,
		a.config.Image.FanOut,
		a.zapLogger,
	))

	a.marketingHandler = marketing.NewHandler(marketing.NewService(openaiClient, ledgerService, a.zapLogger))
	a.placesHandler = places.NewHandler(places.NewService(placesClient, ledgerService, a.zapLogger))

	quoteRepo := quote.NewRepository(a.db)
	if a.redis != nil {
		quoteRepo = quote.NewCachedRepository(quoteRepo, a.redis, sharedcache.QuoteTTL(&a.config.Redis), a.zapLogger, a.metrics)
	}
	a.quoteHandler = quote.NewHandler(quote.NewService(quoteRepo, ledgerService, a.zapLogger))

	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		a.ledgerHandler.RegisterRoutes(v1)
		a.imageHandler.RegisterRoutes(v1)
		a.marketingHandler.RegisterRoutes(v1)
		a.placesHandler.RegisterRoutes(v1)
		a.quoteHandler.RegisterRoutes(v1)
	}

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := sharedcache.Close(a.redis); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
	_ = a.zapLogger.Sync()
}
