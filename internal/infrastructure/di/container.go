package di

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/domain/services/chat"
	"github.com/wealth-one/wealth_service/internal/domain/services/portfolio"
	"github.com/wealth-one/wealth_service/internal/domain/services/prices"
	"github.com/wealth-one/wealth_service/internal/domain/services/users"
	"github.com/wealth-one/wealth_service/internal/infrastructure/ai"
	"github.com/wealth-one/wealth_service/internal/infrastructure/cache"
	"github.com/wealth-one/wealth_service/internal/infrastructure/config"
	"github.com/wealth-one/wealth_service/internal/infrastructure/marketdata"
	"github.com/wealth-one/wealth_service/internal/infrastructure/repositories"
	"github.com/wealth-one/wealth_service/pkg/auth"
	"github.com/wealth-one/wealth_service/pkg/logger"
)

// Container wires the infrastructure and domain services together.
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	UserRepo        *repositories.UserRepository
	TransactionRepo *repositories.TransactionRepository
	HoldingRepo     *repositories.HoldingRepository

	CoinGecko *marketdata.CoinGeckoClient
	StockAPI  *marketdata.StockAPIClient

	CryptoPrices *prices.Cache
	StockPrices  *prices.Cache

	UserService      *users.Service
	PortfolioService *portfolio.Service
	ChatService      *chat.Service
}

// New builds the container. The price caches are primed from their Redis
// snapshots so valuations have quotes before the first refresh cycle runs.
func New(cfg *config.Config, log *logger.Logger, db *sqlx.DB, redisClient *redis.Client) *Container {
	zapLog := log.Zap()

	userRepo := repositories.NewUserRepository(db, zapLog)
	transactionRepo := repositories.NewTransactionRepository(db, zapLog)
	holdingRepo := repositories.NewHoldingRepository(db, zapLog)

	coingecko := marketdata.NewCoinGeckoClient(cfg.Markets, zapLog)
	stockAPI := marketdata.NewStockAPIClient(cfg.Markets, zapLog)

	snapshots := cache.NewPriceSnapshotStore(redisClient, zapLog)
	cryptoPrices := prices.NewCache(entities.AssetClassCrypto, coingecko, snapshots, zapLog)
	stockPrices := prices.NewCache(entities.AssetClassStock, stockAPI, snapshots, zapLog)

	primeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cryptoPrices.Prime(primeCtx)
	stockPrices.Prime(primeCtx)

	aggregator := portfolio.NewAggregator(zapLog)
	portfolioService := portfolio.NewService(
		transactionRepo, holdingRepo, aggregator, cryptoPrices, stockPrices, zapLog,
	)

	userService := users.NewService(
		userRepo,
		auth.TokenConfig{
			Secret: cfg.JWT.Secret,
			TTL:    time.Duration(cfg.JWT.AccessTTL) * time.Second,
			Issuer: cfg.JWT.Issuer,
		},
		cfg.Security.EncryptionKey,
		zapLog,
	)

	provider := ai.NewGeminiProvider(&ai.ProviderConfig{
		APIKey:       cfg.AI.APIKey,
		Model:        cfg.AI.Model,
		MaxTokens:    cfg.AI.MaxTokens,
		Temperature:  cfg.AI.Temperature,
		Timeout:      time.Duration(cfg.AI.Timeout) * time.Second,
		RateLimitRPM: cfg.AI.RateLimitRPM,
	}, zapLog)
	chatService := chat.NewService(provider, portfolioService, zapLog)

	return &Container{
		Config:           cfg,
		Logger:           log,
		DB:               db,
		Redis:            redisClient,
		UserRepo:         userRepo,
		TransactionRepo:  transactionRepo,
		HoldingRepo:      holdingRepo,
		CoinGecko:        coingecko,
		StockAPI:         stockAPI,
		CryptoPrices:     cryptoPrices,
		StockPrices:      stockPrices,
		UserService:      userService,
		PortfolioService: portfolioService,
		ChatService:      chatService,
	}
}
