package analysis

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/utils"
)

// TableProvider supplies the immutable lookup tables the engine is built
// from. Implemented by the reference module.
type TableProvider interface {
	LookupTables() (sectors map[string]string, aliases map[string]string, err error)
}

// HoldingsProvider supplies the current portfolio as analysis holdings.
// Implemented by the portfolio module.
type HoldingsProvider interface {
	Holdings() ([]Holding, error)
}

// ConstituentsProvider supplies the ETF constituent tables.
// Implemented by the reference module.
type ConstituentsProvider interface {
	Constituents() (map[string][]ETFConstituent, error)
}

// Result is one complete analysis pass, as captured by snapshots and served
// to the presentation layer.
type Result struct {
	CreatedAt       time.Time              `json:"created_at"`
	TotalValue      float64                `json:"total_value"`
	HoldingCount    int                    `json:"holding_count"`
	SectorExposure  []SectorExposure       `json:"sector_exposure"`
	Exposure        []ExposureEntry        `json:"exposure"`
	Overlap         []OverlapPair          `json:"overlap"`
	Warnings        []ConcentrationWarning `json:"warnings"`
	Diversification Diversification        `json:"diversification"`
}

// Service holds the current engine behind a mutex and runs analysis passes
// over the stored portfolio. The engine is an immutable snapshot of the
// lookup tables; Rebuild swaps in a fresh one atomically, so handlers never
// observe a half-updated table.
type Service struct {
	mu     sync.RWMutex
	engine *Engine

	tables       TableProvider
	holdings     HoldingsProvider
	constituents ConstituentsProvider

	defaultThreshold float64
	defaultLimit     int

	log zerolog.Logger
}

// NewService creates the analysis service and builds the initial engine.
func NewService(
	tables TableProvider,
	holdings HoldingsProvider,
	constituents ConstituentsProvider,
	defaultThreshold float64,
	defaultLimit int,
	log zerolog.Logger,
) (*Service, error) {
	s := &Service{
		tables:           tables,
		holdings:         holdings,
		constituents:     constituents,
		defaultThreshold: defaultThreshold,
		defaultLimit:     defaultLimit,
		log:              log.With().Str("service", "analysis").Logger(),
	}

	if err := s.Rebuild(); err != nil {
		return nil, err
	}

	return s, nil
}

// Rebuild reloads the lookup tables and swaps in a fresh engine.
// Called at startup and after every reference refresh.
func (s *Service) Rebuild() error {
	sectors, aliases, err := s.tables.LookupTables()
	if err != nil {
		return fmt.Errorf("failed to load lookup tables: %w", err)
	}

	engine := NewEngine(sectors, aliases)

	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()

	s.log.Info().
		Int("sectors", engine.Sectors().Size()).
		Int("aliases", engine.Canonical().Size()).
		Msg("Analysis engine rebuilt")

	return nil
}

// Engine returns the current engine snapshot. The snapshot is immutable and
// stays valid across concurrent rebuilds.
func (s *Service) Engine() *Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// DefaultThreshold returns the configured concentration threshold.
func (s *Service) DefaultThreshold() float64 {
	return s.defaultThreshold
}

// DefaultLimit returns the configured exposure list cap.
func (s *Service) DefaultLimit() int {
	return s.defaultLimit
}

// SectorExposure computes the sector breakdown of the stored portfolio.
func (s *Service) SectorExposure() ([]SectorExposure, error) {
	holdings, err := s.holdings.Holdings()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	return s.Engine().ComputeSectorExposure(holdings), nil
}

// Exposure computes the look-through exposure table, capped at limit
// entries. A non-positive limit returns the full list.
func (s *Service) Exposure(limit int) ([]ExposureEntry, error) {
	entries, err := s.fullExposure()
	if err != nil {
		return nil, err
	}

	return TopEntries(entries, limit), nil
}

// Overlap computes the pairwise overlap matrix of the held ETFs: holdings
// whose canonical ticker appears in the constituent tables.
func (s *Service) Overlap() ([]OverlapPair, error) {
	holdings, err := s.holdings.Holdings()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	constituents, err := s.constituents.Constituents()
	if err != nil {
		return nil, fmt.Errorf("failed to load constituents: %w", err)
	}

	engine := s.Engine()
	return engine.ComputeOverlap(heldETFs(engine, holdings, constituents), constituents), nil
}

// Concentration flags blended exposures at or above the threshold.
// A non-positive threshold selects the configured default.
func (s *Service) Concentration(thresholdPercent float64) ([]ConcentrationWarning, error) {
	entries, err := s.fullExposure()
	if err != nil {
		return nil, err
	}

	if thresholdPercent <= 0 {
		thresholdPercent = s.defaultThreshold
	}

	return DetectConcentration(entries, thresholdPercent), nil
}

// Diversification summarizes the look-through exposure spread.
func (s *Service) Diversification() (Diversification, error) {
	entries, err := s.fullExposure()
	if err != nil {
		return Diversification{}, err
	}

	return MeasureDiversification(entries), nil
}

// RunPass executes the complete analysis pass over the stored portfolio,
// using the configured threshold and limit.
func (s *Service) RunPass() (Result, error) {
	timer := utils.NewTimer("analysis_pass", s.log)
	defer timer.Stop()

	holdings, err := s.holdings.Holdings()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load holdings: %w", err)
	}

	constituents, err := s.constituents.Constituents()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load constituents: %w", err)
	}

	return s.runPass(holdings, constituents, s.defaultThreshold, s.defaultLimit), nil
}

// Preview runs an ad-hoc pass over caller-supplied inputs. Inputs must be
// validated at the boundary before calling.
func (s *Service) Preview(holdings []Holding, constituents map[string][]ETFConstituent, thresholdPercent float64, limit int) Result {
	if thresholdPercent <= 0 {
		thresholdPercent = s.defaultThreshold
	}
	if limit == 0 {
		limit = s.defaultLimit
	}

	return s.runPass(holdings, constituents, thresholdPercent, limit)
}

func (s *Service) runPass(holdings []Holding, constituents map[string][]ETFConstituent, thresholdPercent float64, limit int) Result {
	engine := s.Engine()

	totalValue := 0.0
	for _, h := range holdings {
		totalValue += h.CurrentValue
	}

	exposure := engine.ComputeExposure(holdings, constituents)

	return Result{
		CreatedAt:       time.Now().UTC(),
		TotalValue:      totalValue,
		HoldingCount:    len(holdings),
		SectorExposure:  engine.ComputeSectorExposure(holdings),
		Exposure:        TopEntries(exposure, limit),
		Overlap:         engine.ComputeOverlap(heldETFs(engine, holdings, constituents), constituents),
		Warnings:        DetectConcentration(exposure, thresholdPercent),
		Diversification: MeasureDiversification(exposure),
	}
}

func (s *Service) fullExposure() ([]ExposureEntry, error) {
	holdings, err := s.holdings.Holdings()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	constituents, err := s.constituents.Constituents()
	if err != nil {
		return nil, fmt.Errorf("failed to load constituents: %w", err)
	}

	return s.Engine().ComputeExposure(holdings, constituents), nil
}

// heldETFs selects the holdings that are funds with known constituent data.
func heldETFs(engine *Engine, holdings []Holding, constituents map[string][]ETFConstituent) []string {
	funds := normalizeFunds(constituents)

	etfs := make([]string, 0)
	for _, h := range holdings {
		canonical := engine.Canonical().Canonicalize(h.Ticker)
		if _, ok := funds[normalize(canonical)]; ok {
			etfs = append(etfs, canonical)
		}
	}

	return etfs
}
