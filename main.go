package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradesim/src/api"
	"tradesim/src/api/handlers"
	"tradesim/src/clients/quotes"
	"tradesim/src/config"
	"tradesim/src/database"
	"tradesim/src/repositories"
	"tradesim/src/repositories/memory"
	"tradesim/src/scheduler"
	"tradesim/src/services"
	"tradesim/src/utils"
	redis_utils "tradesim/src/utils/redis"
)

const defaultInitialCash = "10000"

func main() {
	// A missing .env file is fine; settings may come from the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}

	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func buildStores(cfg *config.Config) (repositories.Ledger, repositories.UserStore, error) {
	if cfg.Databases.SQL.InMemory {
		ledger := memory.NewMemoryLedger()
		return ledger, ledger, nil
	}

	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := database.SetupGorm(cfg)
	if err != nil {
		return nil, nil, err
	}

	return repositories.NewPostgresLedger(pool), repositories.NewGormUserStore(gormDB), nil
}

func run(cfg *config.Config) (<-chan error, error) {
	logger := utils.NewLogger(logrus.InfoLevel)
	ctx := utils.WithLogger(context.Background(), logger)

	ledger, userStore, err := buildStores(cfg)
	if err != nil {
		return nil, err
	}

	var quoteCache *redis_utils.RedisHandler
	if cfg.Databases.Redis.Enabled {
		quoteCache, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			return nil, err
		}
	}

	initialCash := cfg.Market.InitialCash
	if initialCash == "" {
		initialCash = defaultInitialCash
	}
	startingCash, err := decimal.NewFromString(initialCash)
	if err != nil {
		return nil, err
	}

	quoteTTL := time.Duration(cfg.ExternalClients.Quotes.CacheTTLSeconds) * time.Second
	quotesClient := quotes.NewClient(cfg)

	marketService := services.NewMarketService(ledger, quotesClient, quoteCache, quoteTTL)
	tradeService := services.NewTradeService(ledger)
	portfolioService := services.NewPortfolioService(ledger)
	userService := services.NewUserService(userStore, ledger, startingCash)

	if err := marketService.SeedAssets(ctx, cfg.Market.SeedTickers); err != nil {
		return nil, err
	}

	// First refresh happens at startup so the catalog has prices before the
	// cron kicks in. Per-ticker failures are logged inside the service.
	if _, err := marketService.RefreshAll(ctx); err != nil {
		logger.WithError(err).Warn("initial price refresh failed")
	}

	if cfg.Market.RefreshCron != "" {
		_, err := scheduler.NewScheduledTask(cfg.Market.RefreshCron, func() {
			if _, err := marketService.RefreshAll(ctx); err != nil {
				logger.WithError(err).Warn("scheduled price refresh failed")
			}
		})
		if err != nil {
			return nil, err
		}
	}

	handler := handlers.NewHandler(userService, tradeService, portfolioService, marketService)
	server := api.NewServer(handler, logger)
	httpServer := api.NewHTTPServer(server, cfg.Service.Port)

	errC := make(chan error, 1)

	go func() {
		logger.Info("Starting server on port ", cfg.Service.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()
	return errC, nil
}
