package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/domain/services/portfolio"
	"github.com/wealth-one/wealth_service/internal/infrastructure/repositories"
	"github.com/wealth-one/wealth_service/pkg/logger"
)

// PortfolioHandler serves portfolio views, the trade ledger and holdings
// imports.
type PortfolioHandler struct {
	portfolio    *portfolio.Service
	transactions *repositories.TransactionRepository
	holdings     *repositories.HoldingRepository
	logger       *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(
	portfolioService *portfolio.Service,
	transactions *repositories.TransactionRepository,
	holdings *repositories.HoldingRepository,
	logger *logger.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio:    portfolioService,
		transactions: transactions,
		holdings:     holdings,
		logger:       logger,
	}
}

// Overview returns the summarized portfolio.
// GET /api/v1/portfolio/overview
func (h *PortfolioHandler) Overview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	summary, err := h.portfolio.Overview(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("Portfolio overview failed", "error", err, "user_id", userID, "request_id", getRequestID(c))
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Assets returns per-class valuations, optionally filtered by class.
// GET /api/v1/portfolio/assets?class=crypto
func (h *PortfolioHandler) Assets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	valuations, err := h.portfolio.Assets(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("Asset valuation failed", "error", err, "user_id", userID, "request_id", getRequestID(c))
		respondAppError(c, err)
		return
	}

	if classParam := c.Query("class"); classParam != "" {
		class := entities.AssetClass(classParam)
		vals, ok := valuations[class]
		if !ok {
			respondBadRequest(c, "unknown asset class: "+classParam)
			return
		}
		c.JSON(http.StatusOK, map[entities.AssetClass][]entities.AssetValuation{class: vals})
		return
	}

	c.JSON(http.StatusOK, valuations)
}

// RefreshPrices re-fetches quotes for the user's symbols. Partial failure is
// still a 200; the response lists what could not be refreshed.
// POST /api/v1/portfolio/refresh-prices
func (h *PortfolioHandler) RefreshPrices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	results, err := h.portfolio.RefreshPrices(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("Price refresh failed", "error", err, "user_id", userID, "request_id", getRequestID(c))
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

type recordTransactionRequest struct {
	OrderID   string          `json:"order_id"`
	Symbol    string          `json:"symbol" binding:"required"`
	Side      string          `json:"side" binding:"required,oneof=buy sell"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	FeeAmount decimal.Decimal `json:"fee_amount"`
	Exchange  string          `json:"exchange"`
	Timestamp time.Time       `json:"timestamp"`
}

// RecordTransaction appends one trade to the ledger.
// POST /api/v1/transactions
func (h *PortfolioHandler) RecordTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req recordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid transaction payload: "+err.Error())
		return
	}
	if req.Quantity.Sign() <= 0 {
		respondBadRequest(c, "quantity must be positive")
		return
	}
	if req.Price.Sign() <= 0 {
		respondBadRequest(c, "price must be positive")
		return
	}
	if req.FeeAmount.Sign() < 0 {
		respondBadRequest(c, "fee_amount must not be negative")
		return
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}

	tx := &entities.Transaction{
		UserID:    userID,
		OrderID:   req.OrderID,
		Symbol:    req.Symbol,
		Side:      entities.TransactionSide(req.Side),
		Quantity:  req.Quantity,
		Price:     req.Price,
		FeeAmount: req.FeeAmount,
		Exchange:  req.Exchange,
		Timestamp: req.Timestamp,
	}

	if err := h.transactions.Insert(c.Request.Context(), tx); err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

type importTransactionsRequest struct {
	Transactions []recordTransactionRequest `json:"transactions" binding:"required"`
}

// ImportTransactions appends a batch of trades, typically an exchange export.
// Records already present (same order id) are skipped.
// POST /api/v1/transactions/import
func (h *PortfolioHandler) ImportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req importTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid import payload: "+err.Error())
		return
	}

	batch := make([]entities.Transaction, 0, len(req.Transactions))
	for _, r := range req.Transactions {
		if r.Quantity.Sign() <= 0 || r.Price.Sign() <= 0 || r.FeeAmount.Sign() < 0 {
			respondBadRequest(c, "transaction for "+r.Symbol+" has invalid quantity, price or fee")
			return
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = time.Now()
		}
		batch = append(batch, entities.Transaction{
			UserID:    userID,
			OrderID:   r.OrderID,
			Symbol:    r.Symbol,
			Side:      entities.TransactionSide(r.Side),
			Quantity:  r.Quantity,
			Price:     r.Price,
			FeeAmount: r.FeeAmount,
			Exchange:  r.Exchange,
			Timestamp: r.Timestamp,
		})
	}

	if err := h.transactions.InsertBatch(c.Request.Context(), batch); err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": len(batch)})
}

// ListTransactions returns the user's trade ledger in execution order.
// GET /api/v1/transactions
func (h *PortfolioHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	transactions, err := h.transactions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

type importHoldingsRequest struct {
	Holdings []entities.Holding `json:"holdings" binding:"required"`
}

// ImportHoldings replaces the user's stock holdings with a broker export.
// POST /api/v1/holdings/import
func (h *PortfolioHandler) ImportHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req importHoldingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid holdings payload: "+err.Error())
		return
	}
	for _, holding := range req.Holdings {
		if holding.TradingSymbol == "" {
			respondBadRequest(c, "every holding needs a tradingsymbol")
			return
		}
		if holding.Quantity.Sign() < 0 || holding.AveragePrice.Sign() < 0 {
			respondBadRequest(c, "holding quantity and average_price must not be negative")
			return
		}
	}

	if err := h.holdings.ReplaceForUser(c.Request.Context(), userID, req.Holdings); err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": len(req.Holdings)})
}

// ListHoldings returns the user's stock holdings.
// GET /api/v1/holdings
func (h *PortfolioHandler) ListHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	holdings, err := h.holdings.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": holdings, "count": len(holdings)})
}
