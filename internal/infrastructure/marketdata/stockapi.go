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

// StockAPIClient talks to the RapidAPI Indian stock exchange API for NSE/BSE
// quotes looked up by company name or trading symbol.
type StockAPIClient struct {
	baseURL    string
	apiKey     string
	host       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	retryCfg   retry.Config
	logger     *zap.Logger
}

// StockInfo is the subset of the provider response the service exposes.
type StockInfo struct {
	CompanyName string           `json:"companyName"`
	Industry    string           `json:"industry"`
	NSEPrice    *decimal.Decimal `json:"nsePrice,omitempty"`
	BSEPrice    *decimal.Decimal `json:"bsePrice,omitempty"`
}

func NewStockAPIClient(cfg config.MarketsConfig, logger *zap.Logger) *StockAPIClient {
	return &StockAPIClient{
		baseURL:    strings.TrimRight(cfg.StockAPI.BaseURL, "/"),
		apiKey:     cfg.StockAPI.APIKey,
		host:       cfg.StockAPI.Host,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		breaker:    circuitbreaker.New("stock-api", circuitbreaker.DefaultConfig(), logger),
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
	}
}

// StockInfo looks a stock up by name and returns its company details with the
// latest NSE and BSE prices.
func (c *StockAPIClient) StockInfo(ctx context.Context, name string) (*StockInfo, error) {
	q := url.Values{}
	q.Set("name", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stock?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	var payload struct {
		CompanyName  string `json:"companyName"`
		Industry     string `json:"industry"`
		CurrentPrice struct {
			NSE *decimal.Decimal `json:"NSE"`
			BSE *decimal.Decimal `json:"BSE"`
		} `json:"currentPrice"`
	}
	if err := doJSON(ctx, c.httpClient, c.breaker, c.retryCfg, req, &payload); err != nil {
		metrics.PriceFetchesTotal.WithLabelValues("stock_api", "error").Inc()
		return nil, fmt.Errorf("stock lookup %q: %w", name, err)
	}
	metrics.PriceFetchesTotal.WithLabelValues("stock_api", "success").Inc()

	if payload.CompanyName == "" {
		return nil, ErrNoQuote
	}

	return &StockInfo{
		CompanyName: payload.CompanyName,
		Industry:    payload.Industry,
		NSEPrice:    payload.CurrentPrice.NSE,
		BSEPrice:    payload.CurrentPrice.BSE,
	}, nil
}

// FetchQuote implements prices.QuoteFetcher for stock symbols. NSE is the
// primary listing; BSE is used when the NSE quote is missing.
func (c *StockAPIClient) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	info, err := c.StockInfo(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch {
	case info.NSEPrice != nil:
		return *info.NSEPrice, nil
	case info.BSEPrice != nil:
		return *info.BSEPrice, nil
	default:
		return decimal.Decimal{}, ErrNoQuote
	}
}
