package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wealth-one/wealth_service/internal/infrastructure/marketdata"
	apperrors "github.com/wealth-one/wealth_service/pkg/errors"
	"github.com/wealth-one/wealth_service/pkg/logger"
)

// MarketHandler proxies market-data lookups so provider API keys stay on the
// server.
type MarketHandler struct {
	coingecko *marketdata.CoinGeckoClient
	stocks    *marketdata.StockAPIClient
	logger    *logger.Logger
}

// NewMarketHandler creates a new market data handler
func NewMarketHandler(coingecko *marketdata.CoinGeckoClient, stocks *marketdata.StockAPIClient, logger *logger.Logger) *MarketHandler {
	return &MarketHandler{
		coingecko: coingecko,
		stocks:    stocks,
		logger:    logger,
	}
}

// CryptoPrices returns spot prices for a comma-separated list of CoinGecko
// ids.
// GET /api/crypto/prices?ids=bitcoin,ethereum
func (h *MarketHandler) CryptoPrices(c *gin.Context) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		respondBadRequest(c, "query parameter 'ids' is required")
		return
	}

	ids := strings.Split(idsParam, ",")
	for i := range ids {
		ids[i] = strings.TrimSpace(ids[i])
	}

	prices, err := h.coingecko.SimplePrice(c.Request.Context(), ids)
	if err != nil {
		h.logger.Errorw("Crypto price lookup failed", "error", err, "request_id", getRequestID(c))
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, prices)
}

// TrendingCoins returns CoinGecko's trending coins.
// GET /api/crypto/trending
func (h *MarketHandler) TrendingCoins(c *gin.Context) {
	coins, err := h.coingecko.Trending(c.Request.Context())
	if err != nil {
		h.logger.Errorw("Trending lookup failed", "error", err, "request_id", getRequestID(c))
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"coins": coins})
}

// StockPrice looks up an Indian stock by name or trading symbol.
// GET /api/stock/price?name=RELIANCE
func (h *MarketHandler) StockPrice(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		respondBadRequest(c, "query parameter 'name' is required")
		return
	}

	info, err := h.stocks.StockInfo(c.Request.Context(), name)
	if errors.Is(err, marketdata.ErrNoQuote) {
		respondError(c, http.StatusNotFound, apperrors.ErrCodePriceUnavailable, "no quote found for "+name, nil)
		return
	}
	if err != nil {
		h.logger.Errorw("Stock price lookup failed", "error", err, "name", name, "request_id", getRequestID(c))
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
