package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/infrastructure/ai"
	apperrors "github.com/wealth-one/wealth_service/pkg/errors"
	"github.com/wealth-one/wealth_service/pkg/metrics"
)

const systemPrompt = `You are the portfolio assistant of a personal wealth dashboard that tracks
Indian stock and crypto holdings. Answer questions about the user's portfolio
using only the context below. Amounts are in INR. Be concise and factual;
never invent holdings or prices, and say so when a price is unknown. Do not
give financial advice beyond describing the portfolio.`

// priceIntent spots prompts that ask about a price or value so live quotes
// for the symbols mentioned can be added to the context.
var priceIntent = regexp.MustCompile(`(?i)\b(price|worth|value|rate|quote)s?\b`)

var symbolPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,11}\b`)

// PortfolioReader is the slice of the portfolio service the assistant needs.
type PortfolioReader interface {
	Overview(ctx context.Context, userID uuid.UUID) (*entities.PortfolioSummary, error)
	Assets(ctx context.Context, userID uuid.UUID) (map[entities.AssetClass][]entities.AssetValuation, error)
}

// Service answers free-text questions about a user's portfolio by grounding
// the completion provider with the user's current holdings and prices.
type Service struct {
	provider  ai.Provider
	portfolio PortfolioReader
	logger    *zap.Logger
}

// NewService creates a new chat service
func NewService(provider ai.Provider, portfolio PortfolioReader, logger *zap.Logger) *Service {
	return &Service{
		provider:  provider,
		portfolio: portfolio,
		logger:    logger,
	}
}

// Ask builds a holdings-grounded prompt and queries the provider.
func (s *Service) Ask(ctx context.Context, userID uuid.UUID, prompt string) (*entities.ChatResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperrors.ValidationError("prompt is required")
	}

	contextBlock, err := s.buildContext(ctx, userID, prompt)
	if err != nil {
		// A portfolio load failure should not kill the conversation; answer
		// without holdings context instead.
		s.logger.Warn("Failed to build portfolio context for chat", zap.Error(err))
		contextBlock = "Portfolio context is currently unavailable."
	}

	resp, err := s.provider.Complete(ctx, &ai.CompletionRequest{
		SystemPrompt: systemPrompt + "\n\n" + contextBlock,
		Prompt:       prompt,
		UserID:       userID.String(),
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(s.provider.Name(), "error").Inc()
		s.logger.Error("Chat completion failed", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "assistant is currently unavailable")
	}
	metrics.ChatRequestsTotal.WithLabelValues(s.provider.Name(), "success").Inc()

	return &entities.ChatResponse{
		Text:     resp.Content,
		Provider: resp.Provider,
	}, nil
}

// buildContext renders the user's portfolio as plain text for the system
// prompt. When the prompt asks about prices, only the symbols it mentions get
// their full quote lines expanded.
func (s *Service) buildContext(ctx context.Context, userID uuid.UUID, prompt string) (string, error) {
	summary, err := s.portfolio.Overview(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load portfolio overview: %w", err)
	}
	valuations, err := s.portfolio.Assets(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load assets: %w", err)
	}

	var b strings.Builder
	b.WriteString("Portfolio summary:\n")
	fmt.Fprintf(&b, "- Total investment: %s\n", summary.TotalInvestment.StringFixed(2))
	fmt.Fprintf(&b, "- Total current value: %s\n", summary.TotalCurrentValue.StringFixed(2))
	fmt.Fprintf(&b, "- Total return: %s (%s%%)\n",
		summary.TotalReturn.StringFixed(2), summary.TotalReturnPercent.StringFixed(2))

	for class, cs := range summary.Classes {
		fmt.Fprintf(&b, "- %s: value %s, allocation %s%%\n",
			class, cs.CurrentValue.StringFixed(2), cs.AllocationPercent.StringFixed(2))
	}

	mentioned := mentionedSymbols(prompt)
	wantsPrices := priceIntent.MatchString(prompt)

	b.WriteString("\nHoldings:\n")
	for class, vals := range valuations {
		for _, v := range vals {
			name := v.Symbol
			if v.Name != "" {
				name = fmt.Sprintf("%s (%s)", v.Symbol, v.Name)
			}
			fmt.Fprintf(&b, "- [%s] %s: qty %s, avg cost %s, invested %s",
				class, name, v.Quantity.String(), v.AverageCost.StringFixed(2), v.Investment.StringFixed(2))

			_, asked := mentioned[v.Symbol]
			if wantsPrices || asked {
				if v.CurrentPrice != nil {
					fmt.Fprintf(&b, ", current price %s, current value %s",
						v.CurrentPrice.StringFixed(2), v.CurrentValue.StringFixed(2))
				} else {
					b.WriteString(", current price unknown")
				}
			}
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// mentionedSymbols pulls uppercase ticker-like tokens out of the prompt.
func mentionedSymbols(prompt string) map[string]struct{} {
	symbols := make(map[string]struct{})
	for _, match := range symbolPattern.FindAllString(prompt, -1) {
		symbols[match] = struct{}{}
	}
	return symbols
}
