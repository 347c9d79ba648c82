// Package app boots the shared dependencies every stockpile command needs:
// configuration, logging, the database, the optional Redis list cache and
// the token manager.
//
//	a, err := app.Boot(ctx)
//	if err != nil { ... }
//	defer a.Close()
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockpile/app/models"
	"github.com/shashiranjanraj/stockpile/app/repositories"
	"github.com/shashiranjanraj/stockpile/app/services"
	"github.com/shashiranjanraj/stockpile/config"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/cache"
	"github.com/shashiranjanraj/stockpile/pkg/database"
	"github.com/shashiranjanraj/stockpile/pkg/logger"
)

// App holds the long-lived dependencies of one process.
type App struct {
	DB     *gorm.DB
	Cache  *cache.Redis // nil when Redis is not configured or unreachable
	Tokens *auth.Manager

	StoreTimeout time.Duration
	ListCacheTTL time.Duration
	RateLimit    int

	mongo *logger.MongoHandler
}

// Boot loads configuration, configures logging, opens and migrates the
// database and connects to Redis. A Redis or MongoDB failure only
// disables that feature; a database failure is fatal.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}

	a := &App{
		Tokens:       auth.NewManager(config.JWTSecret(), config.JWTTTL()),
		StoreTimeout: config.StoreTimeout(),
		ListCacheTTL: config.ListCacheTTL(),
		RateLimit:    config.RateLimit(),
	}

	a.configureLogging()

	db, err := database.Open(database.FromConfig())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = db

	if err := Migrate(db); err != nil {
		a.Close()
		return nil, err
	}

	if addr := config.RedisAddr(); addr != "" {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		c, err := cache.Connect(cctx, addr, config.RedisPassword())
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, product list cache disabled", "error", err)
		} else {
			a.Cache = c
		}
	}

	logger.Info("application booted",
		"env", config.AppEnv(),
		"db_driver", config.DatabaseDriver(),
		"cache", a.Cache != nil,
	)
	return a, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("app: migrate: %w", err)
	}
	return nil
}

func (a *App) configureLogging() {
	uri := config.LogMongoURI()
	if uri == "" {
		logger.Configure(config.AppEnv())
		return
	}

	h, err := logger.NewMongoHandler(uri, config.LogMongoDB(), config.LogMongoCollection())
	if err != nil {
		logger.Configure(config.AppEnv())
		logger.Warn("mongo log sink disabled", "error", err)
		return
	}
	a.mongo = h
	logger.Configure(config.AppEnv(), slog.Handler(h))
}

// Users returns the credential store.
func (a *App) Users() *repositories.UserRepository {
	return repositories.NewUserRepository(a.DB)
}

// Products returns the product ledger.
func (a *App) Products() *repositories.ProductRepository {
	return repositories.NewProductRepository(a.DB)
}

// AuthService builds the registration and login service.
func (a *App) AuthService() *services.AuthService {
	return services.NewAuthService(a.Users(), a.Tokens, a.StoreTimeout)
}

// InventoryService builds the inventory service, with the list cache when
// Redis is available.
func (a *App) InventoryService() *services.InventoryService {
	var lc services.ListCache
	if a.Cache != nil {
		lc = a.Cache
	}
	return services.NewInventoryService(a.Products(), lc, a.StoreTimeout, a.ListCacheTTL)
}

// Ping checks that the database answers.
func (a *App) Ping(ctx context.Context) error {
	return database.Ping(ctx, a.DB)
}

// Close releases everything Boot opened. Safe on a partially booted App.
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			logger.Warn("database close failed", "error", err)
		}
	}
	if a.mongo != nil {
		logger.Configure(config.AppEnv())
		a.mongo.Close()
	}
}
