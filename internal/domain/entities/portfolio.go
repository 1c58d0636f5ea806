package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetClass labels the broad bucket an asset belongs to.
type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassCrypto AssetClass = "crypto"
)

// TransactionSide is the direction of an executed trade.
type TransactionSide string

const (
	SideBuy  TransactionSide = "buy"
	SideSell TransactionSide = "sell"
)

// Transaction is one executed trade. Immutable once recorded; the
// transactions table is an insert-only ledger.
type Transaction struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	OrderID   string          `json:"order_id" db:"order_id"`
	Symbol    string          `json:"symbol" db:"symbol"`
	Side      TransactionSide `json:"side" db:"side"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	FeeAmount decimal.Decimal `json:"fee_amount" db:"fee_amount"`
	Exchange  string          `json:"exchange" db:"exchange"`
	Timestamp time.Time       `json:"timestamp" db:"executed_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Position is the per-symbol aggregate derived from the transaction ledger.
// It is recomputed in full whenever the ledger changes and is never persisted.
// A position whose TotalQuantity is not positive is considered closed and is
// excluded from valuation.
type Position struct {
	Symbol          string          `json:"symbol"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	AccumulatedFees decimal.Decimal `json:"accumulated_fees"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// PriceQuote is the last known market price for a symbol. A nil Price means
// the price is unknown, which downstream components treat as a first-class
// value rather than an error.
type PriceQuote struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price"`
	AsOf   time.Time        `json:"as_of"`
}

// Known reports whether the quote carries a usable price.
func (q PriceQuote) Known() bool {
	return q.Price != nil
}

// AssetValuation combines a position with its current price. CurrentValue,
// ProfitLoss and ProfitLossPercent are nil when the price is unknown;
// ProfitLossPercent is also nil when the investment is not positive.
type AssetValuation struct {
	Symbol            string           `json:"symbol"`
	Class             AssetClass       `json:"class"`
	Name              string           `json:"name,omitempty"`
	Quantity          decimal.Decimal  `json:"quantity"`
	AverageCost       decimal.Decimal  `json:"average_cost"`
	Investment        decimal.Decimal  `json:"investment"`
	CurrentPrice      *decimal.Decimal `json:"current_price"`
	CurrentValue      *decimal.Decimal `json:"current_value"`
	ProfitLoss        *decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent *decimal.Decimal `json:"profit_loss_percent"`
}

// EffectiveValue is the asset's contribution to portfolio totals: the current
// value when the price is known, otherwise the cost basis. An unpriced asset
// is assumed unchanged from cost, never worthless.
func (v AssetValuation) EffectiveValue() decimal.Decimal {
	if v.CurrentValue != nil {
		return *v.CurrentValue
	}
	return v.Investment
}

// ClassSummary is the per-asset-class slice of the portfolio totals.
type ClassSummary struct {
	Class             AssetClass      `json:"class"`
	Investment        decimal.Decimal `json:"investment"`
	CurrentValue      decimal.Decimal `json:"current_value"`
	Return            decimal.Decimal `json:"return"`
	ReturnPercent     decimal.Decimal `json:"return_percent"`
	AllocationPercent decimal.Decimal `json:"allocation_percent"`
}

// PortfolioSummary aggregates valuations across all asset classes.
type PortfolioSummary struct {
	TotalInvestment    decimal.Decimal           `json:"total_investment"`
	TotalCurrentValue  decimal.Decimal           `json:"total_current_value"`
	TotalReturn        decimal.Decimal           `json:"total_return"`
	TotalReturnPercent decimal.Decimal           `json:"total_return_percent"`
	Classes            map[AssetClass]ClassSummary `json:"classes"`
	TopHoldings        []AssetValuation          `json:"top_holdings"`
	PricesAsOf         *time.Time                `json:"prices_as_of,omitempty"`
}

// Holding is a broker-reported stock holding, imported from the brokerage
// (Upstox-style) payload rather than derived from a trade ledger.
type Holding struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	ISIN          string          `json:"isin" db:"isin"`
	TradingSymbol string          `json:"tradingsymbol" db:"trading_symbol"`
	CompanyName   string          `json:"company_name" db:"company_name"`
	Exchange      string          `json:"exchange" db:"exchange"`
	Quantity      decimal.Decimal `json:"quantity" db:"quantity"`
	AveragePrice  decimal.Decimal `json:"average_price" db:"average_price"`
	LastPrice     decimal.Decimal `json:"last_price" db:"last_price"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
