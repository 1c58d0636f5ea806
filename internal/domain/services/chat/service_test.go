package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/infrastructure/ai"
)

type stubProvider struct {
	lastReq *ai.CompletionRequest
	reply   string
	err     error
}

func (p *stubProvider) Complete(_ context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &ai.CompletionResponse{Content: p.reply, Provider: "gemini"}, nil
}

func (p *stubProvider) Name() string { return "gemini" }

type stubPortfolio struct {
	summary    *entities.PortfolioSummary
	valuations map[entities.AssetClass][]entities.AssetValuation
	err        error
}

func (s *stubPortfolio) Overview(context.Context, uuid.UUID) (*entities.PortfolioSummary, error) {
	return s.summary, s.err
}

func (s *stubPortfolio) Assets(context.Context, uuid.UUID) (map[entities.AssetClass][]entities.AssetValuation, error) {
	return s.valuations, s.err
}

func testPortfolio() *stubPortfolio {
	price := decimal.NewFromInt(200)
	value := decimal.NewFromInt(600)
	return &stubPortfolio{
		summary: &entities.PortfolioSummary{
			TotalInvestment:   decimal.NewFromInt(453),
			TotalCurrentValue: decimal.NewFromInt(600),
			TotalReturn:       decimal.NewFromInt(147),
			Classes: map[entities.AssetClass]entities.ClassSummary{
				entities.AssetClassCrypto: {
					Class:             entities.AssetClassCrypto,
					CurrentValue:      decimal.NewFromInt(600),
					AllocationPercent: decimal.NewFromInt(100),
				},
			},
		},
		valuations: map[entities.AssetClass][]entities.AssetValuation{
			entities.AssetClassCrypto: {
				{
					Symbol:       "BTCINR",
					Class:        entities.AssetClassCrypto,
					Quantity:     decimal.NewFromInt(3),
					AverageCost:  decimal.NewFromInt(150),
					Investment:   decimal.NewFromInt(453),
					CurrentPrice: &price,
					CurrentValue: &value,
				},
			},
		},
	}
}

func TestAskGroundsPromptWithHoldings(t *testing.T) {
	provider := &stubProvider{reply: "You hold 3 BTC."}
	svc := NewService(provider, testPortfolio(), zap.NewNop())

	resp, err := svc.Ask(context.Background(), uuid.New(), "what do I hold?")
	require.NoError(t, err)

	assert.Equal(t, "You hold 3 BTC.", resp.Text)
	assert.Equal(t, "gemini", resp.Provider)

	require.NotNil(t, provider.lastReq)
	assert.Contains(t, provider.lastReq.SystemPrompt, "BTCINR")
	assert.Contains(t, provider.lastReq.SystemPrompt, "Total investment: 453.00")
	assert.Equal(t, "what do I hold?", provider.lastReq.Prompt)
}

func TestAskIncludesPricesOnPriceIntent(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	svc := NewService(provider, testPortfolio(), zap.NewNop())

	_, err := svc.Ask(context.Background(), uuid.New(), "what is the price of BTCINR?")
	require.NoError(t, err)

	assert.Contains(t, provider.lastReq.SystemPrompt, "current price 200.00")
}

func TestAskOmitsPricesWithoutIntent(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	svc := NewService(provider, testPortfolio(), zap.NewNop())

	_, err := svc.Ask(context.Background(), uuid.New(), "do i own any bitcoin?")
	require.NoError(t, err)

	assert.NotContains(t, provider.lastReq.SystemPrompt, "current price")
}

func TestAskEmptyPrompt(t *testing.T) {
	svc := NewService(&stubProvider{}, testPortfolio(), zap.NewNop())

	_, err := svc.Ask(context.Background(), uuid.New(), "   ")
	assert.Error(t, err)
}

func TestAskSurvivesPortfolioFailure(t *testing.T) {
	provider := &stubProvider{reply: "I cannot see your holdings right now."}
	svc := NewService(provider, &stubPortfolio{err: errors.New("db down")}, zap.NewNop())

	resp, err := svc.Ask(context.Background(), uuid.New(), "how am i doing?")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Text)
	assert.Contains(t, provider.lastReq.SystemPrompt, "currently unavailable")
}

func TestAskProviderFailure(t *testing.T) {
	provider := &stubProvider{err: &ai.ProviderError{Provider: "gemini", Code: ai.ErrorCodeServerError, Message: "boom"}}
	svc := NewService(provider, testPortfolio(), zap.NewNop())

	_, err := svc.Ask(context.Background(), uuid.New(), "hello")
	assert.Error(t, err)
}
