package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/infrastructure/config"
)

const snapshotTTL = 24 * time.Hour

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// PriceSnapshotStore persists the in-memory price cache to Redis so quotes
// survive a restart. One key per asset class, value is the full quote map.
type PriceSnapshotStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewPriceSnapshotStore(client *redis.Client, logger *zap.Logger) *PriceSnapshotStore {
	return &PriceSnapshotStore{client: client, logger: logger}
}

func snapshotKey(class entities.AssetClass) string {
	return "wealth:prices:" + string(class)
}

// Save overwrites the snapshot for a class.
func (s *PriceSnapshotStore) Save(ctx context.Context, class entities.AssetClass, quotes map[string]entities.PriceQuote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to marshal price snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(class), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save price snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot for a class, or an empty map when none
// exists.
func (s *PriceSnapshotStore) Load(ctx context.Context, class entities.AssetClass) (map[string]entities.PriceQuote, error) {
	data, err := s.client.Get(ctx, snapshotKey(class)).Bytes()
	if err == redis.Nil {
		return map[string]entities.PriceQuote{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load price snapshot: %w", err)
	}

	var quotes map[string]entities.PriceQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		s.logger.Warn("Discarding corrupt price snapshot", zap.String("class", string(class)), zap.Error(err))
		return map[string]entities.PriceQuote{}, nil
	}
	return quotes, nil
}
