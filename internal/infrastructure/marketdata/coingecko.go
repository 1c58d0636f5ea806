package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/infrastructure/config"
	"github.com/wealth-one/wealth_service/pkg/circuitbreaker"
	"github.com/wealth-one/wealth_service/pkg/metrics"
	"github.com/wealth-one/wealth_service/pkg/retry"
)

const coinGeckoAPIKeyHeader = "x-cg-demo-api-key"

// CoinGeckoClient talks to the CoinGecko REST API for crypto spot prices and
// trending coins. Exchange symbols (BTCINR) are mapped to CoinGecko ids
// (bitcoin) via the configured symbol map.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	vsCurrency string
	symbolMap  map[string]string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	retryCfg   retry.Config
	logger     *zap.Logger
}

// TrendingCoin is one entry of CoinGecko's trending search results.
type TrendingCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
}

func NewCoinGeckoClient(cfg config.MarketsConfig, logger *zap.Logger) *CoinGeckoClient {
	symbolMap := make(map[string]string, len(cfg.SymbolMap))
	for symbol, id := range cfg.SymbolMap {
		symbolMap[strings.ToUpper(symbol)] = id
	}
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(cfg.CoinGecko.BaseURL, "/"),
		apiKey:     cfg.CoinGecko.APIKey,
		vsCurrency: cfg.CoinGecko.VsCurrency,
		symbolMap:  symbolMap,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		breaker:    circuitbreaker.New("coingecko", circuitbreaker.DefaultConfig(), logger),
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
	}
}

// SimplePrice returns spot prices for the given CoinGecko ids in the
// configured vs currency. Ids the provider does not know are simply absent
// from the result.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	if len(ids) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", c.vsCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	var payload map[string]map[string]decimal.Decimal
	if err := doJSON(ctx, c.httpClient, c.breaker, c.retryCfg, req, &payload); err != nil {
		metrics.PriceFetchesTotal.WithLabelValues("coingecko", "error").Inc()
		return nil, fmt.Errorf("coingecko simple price: %w", err)
	}
	metrics.PriceFetchesTotal.WithLabelValues("coingecko", "success").Inc()

	prices := make(map[string]decimal.Decimal, len(payload))
	for id, byCurrency := range payload {
		if price, ok := byCurrency[c.vsCurrency]; ok {
			prices[id] = price
		}
	}
	return prices, nil
}

// Trending returns CoinGecko's currently trending coins.
func (c *CoinGeckoClient) Trending(ctx context.Context) ([]TrendingCoin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/trending", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	var payload struct {
		Coins []struct {
			Item TrendingCoin `json:"item"`
		} `json:"coins"`
	}
	if err := doJSON(ctx, c.httpClient, c.breaker, c.retryCfg, req, &payload); err != nil {
		metrics.PriceFetchesTotal.WithLabelValues("coingecko", "error").Inc()
		return nil, fmt.Errorf("coingecko trending: %w", err)
	}
	metrics.PriceFetchesTotal.WithLabelValues("coingecko", "success").Inc()

	coins := make([]TrendingCoin, 0, len(payload.Coins))
	for _, entry := range payload.Coins {
		coins = append(coins, entry.Item)
	}
	return coins, nil
}

// FetchQuote implements prices.QuoteFetcher for crypto symbols.
func (c *CoinGeckoClient) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := c.coinID(symbol)
	if !ok {
		c.logger.Debug("No CoinGecko id mapping for symbol", zap.String("symbol", symbol))
		return decimal.Decimal{}, ErrNoQuote
	}

	prices, err := c.SimplePrice(ctx, []string{id})
	if err != nil {
		return decimal.Decimal{}, err
	}

	price, ok := prices[id]
	if !ok {
		return decimal.Decimal{}, ErrNoQuote
	}
	return price, nil
}

// coinID resolves an exchange symbol to a CoinGecko id. Unmapped symbols fall
// back to the lowercased base symbol with the quote-currency suffix stripped,
// which covers most CoinDCX INR pairs.
func (c *CoinGeckoClient) coinID(symbol string) (string, bool) {
	upper := strings.ToUpper(symbol)
	if id, ok := c.symbolMap[upper]; ok {
		return id, true
	}
	for _, suffix := range []string{"INR", "USDT"} {
		if base, found := strings.CutSuffix(upper, suffix); found && base != "" {
			return strings.ToLower(base), true
		}
	}
	return "", false
}

func (c *CoinGeckoClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(coinGeckoAPIKeyHeader, c.apiKey)
	}
}
