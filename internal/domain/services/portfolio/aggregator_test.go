package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tx(symbol string, side entities.TransactionSide, qty, price, fee string, at time.Time) entities.Transaction {
	return entities.Transaction{
		Symbol:    symbol,
		Side:      side,
		Quantity:  dec(qty),
		Price:     dec(price),
		FeeAmount: dec(fee),
		Timestamp: at,
	}
}

func TestAggregateWeightedAverageCost(t *testing.T) {
	a := NewAggregator(zap.NewNop())
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	positions := a.Aggregate([]entities.Transaction{
		tx("BTCINR", entities.SideBuy, "2", "100", "1", base),
		tx("BTCINR", entities.SideBuy, "2", "200", "1", base.Add(time.Hour)),
		tx("BTCINR", entities.SideSell, "1", "250", "1", base.Add(2*time.Hour)),
	})

	require.Len(t, positions, 1)
	pos := positions["BTCINR"]
	assert.True(t, pos.TotalQuantity.Equal(dec("3")), "quantity: %s", pos.TotalQuantity)
	assert.True(t, pos.AverageCost.Equal(dec("150")), "average cost: %s", pos.AverageCost)
	assert.True(t, pos.AccumulatedFees.Equal(dec("3")), "fees: %s", pos.AccumulatedFees)

	// investment = 150*3 + 3 = 453
	investment := pos.AverageCost.Mul(pos.TotalQuantity).Add(pos.AccumulatedFees)
	assert.True(t, investment.Equal(dec("453")), "investment: %s", investment)
}

func TestAggregateSellDoesNotChangeAverageCost(t *testing.T) {
	a := NewAggregator(zap.NewNop())
	base := time.Now()

	positions := a.Aggregate([]entities.Transaction{
		tx("ETHINR", entities.SideBuy, "10", "50", "0", base),
		tx("ETHINR", entities.SideSell, "4", "500", "0", base.Add(time.Minute)),
	})

	pos := positions["ETHINR"]
	assert.True(t, pos.TotalQuantity.Equal(dec("6")))
	assert.True(t, pos.AverageCost.Equal(dec("50")), "sell must not move the average cost")
}

func TestAggregateOrdersByTimestamp(t *testing.T) {
	a := NewAggregator(zap.NewNop())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// A sell recorded out of order still applies after the buys.
	positions := a.Aggregate([]entities.Transaction{
		tx("SOLINR", entities.SideSell, "5", "90", "0", base.Add(2*time.Hour)),
		tx("SOLINR", entities.SideBuy, "5", "80", "0", base),
		tx("SOLINR", entities.SideBuy, "5", "100", "0", base.Add(time.Hour)),
	})

	pos := positions["SOLINR"]
	assert.True(t, pos.TotalQuantity.Equal(dec("5")))
	assert.True(t, pos.AverageCost.Equal(dec("90")))
}

func TestAggregateBuyOrderIndependence(t *testing.T) {
	a := NewAggregator(zap.NewNop())
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	buys := []entities.Transaction{
		tx("XRPINR", entities.SideBuy, "1", "10", "0", base),
		tx("XRPINR", entities.SideBuy, "2", "40", "0", base.Add(time.Hour)),
		tx("XRPINR", entities.SideBuy, "3", "20", "0", base.Add(2*time.Hour)),
	}
	reversed := []entities.Transaction{buys[2], buys[1], buys[0]}

	forward := a.Aggregate(buys)["XRPINR"]
	backward := a.Aggregate(reversed)["XRPINR"]

	assert.True(t, forward.TotalQuantity.Equal(backward.TotalQuantity))
	assert.True(t, forward.AverageCost.Equal(backward.AverageCost))
}

func TestAggregateDropsClosedPositions(t *testing.T) {
	a := NewAggregator(zap.NewNop())
	base := time.Now()

	positions := a.Aggregate([]entities.Transaction{
		tx("BTCINR", entities.SideBuy, "1", "100", "0", base),
		tx("BTCINR", entities.SideSell, "1", "120", "0", base.Add(time.Minute)),
		tx("ETHINR", entities.SideBuy, "2", "50", "0", base),
		tx("ETHINR", entities.SideSell, "3", "60", "0", base.Add(time.Minute)), // oversold
	})

	assert.Empty(t, positions, "fully exited and oversold symbols are both excluded")
}

func TestAggregateSkipsMalformedTransactions(t *testing.T) {
	a := NewAggregator(zap.NewNop())
	base := time.Now()

	positions := a.Aggregate([]entities.Transaction{
		tx("BTCINR", entities.SideBuy, "1", "100", "0", base),
		tx("BTCINR", "short", "1", "100", "0", base),
		tx("BTCINR", entities.SideBuy, "-1", "100", "0", base),
		tx("BTCINR", entities.SideBuy, "1", "0", "0", base),
		tx("BTCINR", entities.SideBuy, "1", "100", "-5", base),
	})

	pos := positions["BTCINR"]
	assert.True(t, pos.TotalQuantity.Equal(dec("1")), "only the valid record counts")
	assert.True(t, pos.AverageCost.Equal(dec("100")))
}

func TestAggregateEmptyLedger(t *testing.T) {
	a := NewAggregator(zap.NewNop())
	positions := a.Aggregate(nil)
	assert.Empty(t, positions)
}
