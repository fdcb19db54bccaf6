package portfolio

import (
	"context"
	"fmt"

	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/rs/zerolog"
)

// UpstreamClient is the slice of the portfolio API this service needs.
// Implemented by the refdata client.
type UpstreamClient interface {
	GetPortfolio(ctx context.Context) ([]Position, error)
}

// QuoteProvider supplies the latest known price for a ticker. Implemented by
// the price feed client; ok is false when no fresh quote is cached.
type QuoteProvider interface {
	Quote(ticker string) (price float64, ok bool)
}

// Service produces the holdings view for the analysis engine and keeps the
// stored portfolio current from the upstream endpoint and the quote cache.
type Service struct {
	repo     *PositionRepository
	upstream UpstreamClient // nil when no upstream is configured
	quotes   QuoteProvider  // nil when the price feed is disabled
	log      zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(repo *PositionRepository, upstream UpstreamClient, quotes QuoteProvider, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		upstream: upstream,
		quotes:   quotes,
		log:      log.With().Str("service", "portfolio").Logger(),
	}
}

// Holdings returns the stored portfolio as analysis holdings.
// Satisfies analysis.HoldingsProvider.
func (s *Service) Holdings() ([]analysis.Holding, error) {
	positions, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	holdings := make([]analysis.Holding, 0, len(positions))
	for _, p := range positions {
		holdings = append(holdings, analysis.Holding{
			Ticker:       p.Ticker,
			CurrentValue: p.CurrentValue,
		})
	}

	return holdings, nil
}

// Positions returns the stored positions for the API.
func (s *Service) Positions() ([]Position, error) {
	return s.repo.GetAll()
}

// Replace validates and stores a caller-supplied portfolio wholesale.
func (s *Service) Replace(positions []Position) error {
	holdings := make([]analysis.Holding, 0, len(positions))
	for _, p := range positions {
		holdings = append(holdings, analysis.Holding{Ticker: p.Ticker, CurrentValue: p.CurrentValue})
	}
	if err := analysis.ValidateHoldings(holdings); err != nil {
		return err
	}

	return s.repo.ReplaceAll(positions)
}

// Tickers returns the set of held tickers, used by the price feed to scope
// its subscriptions.
func (s *Service) Tickers() ([]string, error) {
	positions, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	tickers := make([]string, 0, len(positions))
	for _, p := range positions {
		tickers = append(tickers, p.Ticker)
	}

	return tickers, nil
}

// Refresh pulls the portfolio from the upstream endpoint, validates it at
// the boundary, revalues it against the quote cache, and stores it.
func (s *Service) Refresh(ctx context.Context) error {
	if s.upstream == nil {
		s.log.Debug().Msg("No upstream portfolio API configured, skipping refresh")
		return nil
	}

	positions, err := s.upstream.GetPortfolio(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch portfolio: %w", err)
	}

	holdings := make([]analysis.Holding, 0, len(positions))
	for _, p := range positions {
		holdings = append(holdings, analysis.Holding{Ticker: p.Ticker, CurrentValue: p.CurrentValue})
	}
	if err := analysis.ValidateHoldings(holdings); err != nil {
		return fmt.Errorf("upstream portfolio rejected: %w", err)
	}

	positions = s.revalued(positions)

	if err := s.repo.ReplaceAll(positions); err != nil {
		return fmt.Errorf("failed to store portfolio: %w", err)
	}

	s.log.Info().Int("positions", len(positions)).Msg("Portfolio refreshed from upstream")
	return nil
}

// Revalue reprices every stored position with a known quantity from the
// quote cache. Positions without a fresh quote keep their stored value.
func (s *Service) Revalue() (int, error) {
	if s.quotes == nil {
		return 0, nil
	}

	positions, err := s.repo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load positions: %w", err)
	}

	updated := 0
	for _, p := range positions {
		if p.Quantity <= 0 {
			continue
		}

		price, ok := s.quotes.Quote(p.Ticker)
		if !ok || price <= 0 || price == p.LastPrice {
			continue
		}

		if err := s.repo.UpdateValue(p.Ticker, price, p.Quantity*price); err != nil {
			s.log.Warn().Err(err).Str("ticker", p.Ticker).Msg("Failed to revalue position")
			continue
		}
		updated++
	}

	if updated > 0 {
		s.log.Debug().Int("updated", updated).Msg("Positions revalued from quote cache")
	}

	return updated, nil
}

// revalued applies the quote cache to an incoming portfolio before storage.
func (s *Service) revalued(positions []Position) []Position {
	if s.quotes == nil {
		return positions
	}

	for i, p := range positions {
		if p.Quantity <= 0 {
			continue
		}
		if price, ok := s.quotes.Quote(p.Ticker); ok && price > 0 {
			positions[i].LastPrice = price
			positions[i].CurrentValue = p.Quantity * price
		}
	}

	return positions
}
