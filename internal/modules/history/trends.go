package history

import (
	"sort"

	"github.com/aristath/lens/pkg/formulas"
	"github.com/rs/zerolog"
)

// DefaultSmoothingPeriod is the EMA period applied to trend series.
const DefaultSmoothingPeriod = 7

// SectorTrend is one sector's smoothed exposure trajectory.
type SectorTrend struct {
	Sector          string    `json:"sector"`
	Dates           []string  `json:"dates"`
	Raw             []float64 `json:"raw"`
	Smoothed        []float64 `json:"smoothed"` // EMA, aligned to the tail of Dates
	LatestPercent   float64   `json:"latest_percent"`
	ChangePercent   float64   `json:"change_percent"` // latest minus oldest raw value
	SmoothingPeriod int       `json:"smoothing_period"`
}

// SectorCorrelation is the exposure correlation of one sector pair over the
// requested window.
type SectorCorrelation struct {
	SectorA     string  `json:"sector_a"`
	SectorB     string  `json:"sector_b"`
	Correlation float64 `json:"correlation"`
	Days        int     `json:"days"`
}

// Trends summarizes the exposure history over a window.
type Trends struct {
	Days          int                 `json:"days"`
	TotalValue    []SectorPoint       `json:"total_value"`
	TotalValueEMA []float64           `json:"total_value_ema"`
	Sectors       []SectorTrend       `json:"sectors"`
	Correlations  []SectorCorrelation `json:"correlations"`
}

// TrendsService derives smoothed series and sector correlations from the
// exposure history.
type TrendsService struct {
	db  *HistoryDB
	log zerolog.Logger
}

// NewTrendsService creates a new trends service
func NewTrendsService(db *HistoryDB, log zerolog.Logger) *TrendsService {
	return &TrendsService{
		db:  db,
		log: log.With().Str("service", "trends").Logger(),
	}
}

// SectorTrend returns one sector's smoothed trajectory.
func (s *TrendsService) SectorTrend(sector string, days, period int) (SectorTrend, error) {
	points, err := s.db.SectorSeries(sector, days)
	if err != nil {
		return SectorTrend{}, err
	}

	return buildTrend(sector, points, period), nil
}

// Compute builds the full trend report for the window: smoothed total value,
// per-sector trajectories, and pairwise sector correlations.
func (s *TrendsService) Compute(days, period int) (Trends, error) {
	if period <= 0 {
		period = DefaultSmoothingPeriod
	}

	totals, err := s.db.TotalValueSeries(days)
	if err != nil {
		return Trends{}, err
	}

	points, err := s.db.AllSeries(days)
	if err != nil {
		return Trends{}, err
	}

	bySector := make(map[string][]SectorPoint)
	order := make([]string, 0)
	for _, p := range points {
		if _, seen := bySector[p.Sector]; !seen {
			order = append(order, p.Sector)
		}
		bySector[p.Sector] = append(bySector[p.Sector], p)
	}

	trends := Trends{Days: days, TotalValue: totals}

	values := make([]float64, 0, len(totals))
	for _, p := range totals {
		values = append(values, p.TotalValue)
	}
	trends.TotalValueEMA = formulas.EMASeries(values, period)

	for _, sector := range order {
		trends.Sectors = append(trends.Sectors, buildTrend(sector, bySector[sector], period))
	}

	trends.Correlations = sectorCorrelations(order, bySector, days)

	return trends, nil
}

func buildTrend(sector string, points []SectorPoint, period int) SectorTrend {
	if period <= 0 {
		period = DefaultSmoothingPeriod
	}

	trend := SectorTrend{Sector: sector, SmoothingPeriod: period}
	for _, p := range points {
		trend.Dates = append(trend.Dates, p.Date)
		trend.Raw = append(trend.Raw, p.ExposurePercent)
	}

	if len(trend.Raw) > 0 {
		trend.LatestPercent = trend.Raw[len(trend.Raw)-1]
		trend.ChangePercent = trend.LatestPercent - trend.Raw[0]
	}

	trend.Smoothed = formulas.EMASeries(trend.Raw, period)

	return trend
}

// sectorCorrelations computes the Pearson correlation of every sector pair
// over the dates both sectors have rows for. Pairs with fewer than three
// shared dates are skipped.
func sectorCorrelations(sectors []string, bySector map[string][]SectorPoint, days int) []SectorCorrelation {
	byDate := make(map[string]map[string]float64)
	for sector, points := range bySector {
		for _, p := range points {
			if byDate[p.Date] == nil {
				byDate[p.Date] = make(map[string]float64)
			}
			byDate[p.Date][sector] = p.ExposurePercent
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var correlations []SectorCorrelation
	for i := 0; i < len(sectors); i++ {
		for j := i + 1; j < len(sectors); j++ {
			var x, y []float64
			for _, date := range dates {
				a, okA := byDate[date][sectors[i]]
				b, okB := byDate[date][sectors[j]]
				if okA && okB {
					x = append(x, a)
					y = append(y, b)
				}
			}

			if len(x) < 3 {
				continue
			}

			correlations = append(correlations, SectorCorrelation{
				SectorA:     sectors[i],
				SectorB:     sectors[j],
				Correlation: formulas.Correlation(x, y),
				Days:        days,
			})
		}
	}

	return correlations
}
