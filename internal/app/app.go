// Package app wires configuration, storage, market data and services into one
// object shared by the server and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api"
	"github.com/ndewijer/Income-Clarity-Backend/internal/config"
	"github.com/ndewijer/Income-Clarity-Backend/internal/database"
	"github.com/ndewijer/Income-Clarity-Backend/internal/marketdata"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
	"github.com/ndewijer/Income-Clarity-Backend/internal/secrets"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/yahoo"
)

// App holds the open resources and every service built over them.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Services api.Services
	Prices   *service.PriceRefreshService

	redis *marketdata.RedisCache
}

// New opens the database, applies pending migrations and builds the services.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to database: %s", cfg.Database.Path)

	version, err := database.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("Database schema at version %d", version)

	a := &App{Config: cfg, DB: db}

	var cache marketdata.Cache = marketdata.NewMemoryCache()
	var pinger service.CachePinger
	if cfg.Redis.Addr != "" {
		rc, err := marketdata.NewRedisCache(cfg.Redis)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.redis = rc
		cache, pinger = rc, rc
		log.Printf("Using redis price cache at %s", cfg.Redis.Addr)
	} else {
		log.Println("REDIS_ADDR not set, using in-process price cache")
	}

	cipher, err := tokenCipher(cfg.Security.AccountTokenKey)
	if err != nil {
		a.Close()
		return nil, err
	}

	client := yahoo.NewFinanceClient(cfg.Market.BaseURL, cfg.Market.RequestsPerSec, cfg.Market.Burst)
	gateway := marketdata.NewGateway(client, cache, cfg.Market.CacheTTL, cfg.Market.Timeout)

	// Create repositories
	store := repository.NewStore(db)

	// Create services
	a.Services = api.Services{
		System: service.NewSystemService(db, pinger, map[string]bool{
			"supercards":     true,
			"reconciliation": true,
			"account_sync":   true,
			"redis_cache":    pinger != nil,
		}),
		Users:          service.NewUserService(store.Users),
		Portfolios:     service.NewPortfolioService(store.Portfolios, store.Users),
		Holdings:       service.NewHoldingService(store.Holdings, store.Portfolios),
		Income:         service.NewIncomeService(store),
		Expenses:       service.NewExpenseService(store.Expenses, store.Users),
		Tax:            service.NewTaxProfileService(store.Tax, store.Users),
		Accounts:       service.NewSyncedAccountService(store, cipher),
		SuperCards:     service.NewSuperCardService(store, gateway, cfg),
		Reconciliation: service.NewReconciliationService(store, cfg.Reconcile.Tolerance),
	}
	a.Prices = service.NewPriceRefreshService(store.Holdings, gateway)

	return a, nil
}

// tokenCipher builds the account token cipher. Without a configured key an
// ephemeral one is generated, so tokens stored by this process cannot be
// opened after a restart.
func tokenCipher(keys string) (*secrets.TokenCipher, error) {
	if keys == "" {
		log.Println("WARNING: ACCOUNT_TOKEN_KEY not set, generating an ephemeral key; linked accounts must be re-linked after restart")
		key, err := secrets.GenerateKey()
		if err != nil {
			return nil, err
		}
		keys = key
	}
	cipher, err := secrets.NewTokenCipher(keys)
	if err != nil {
		return nil, fmt.Errorf("invalid ACCOUNT_TOKEN_KEY: %w", err)
	}
	return cipher, nil
}

// Close releases the database and cache connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Failed to close redis: %v", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
