package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/lens/internal/modules/analysis"
)

type staticHoldings []analysis.Holding

func (s staticHoldings) Holdings() ([]analysis.Holding, error) { return s, nil }

type staticConstituents map[string][]analysis.ETFConstituent

func (s staticConstituents) Constituents() (map[string][]analysis.ETFConstituent, error) {
	return s, nil
}

type staticTables struct {
	sectors map[string]string
	aliases map[string]string
}

func (s staticTables) LookupTables() (map[string]string, map[string]string, error) {
	return s.sectors, s.aliases, nil
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	service, err := analysis.NewService(
		staticTables{sectors: map[string]string{"AAPL": "Technology"}},
		staticHoldings{
			{Ticker: "AAPL", CurrentValue: 600},
			{Ticker: "VOO", CurrentValue: 400},
		},
		staticConstituents{
			"VOO": {
				{ETFTicker: "VOO", Symbol: "AAPL", WeightPercent: 50},
				{ETFTicker: "VOO", Symbol: "MSFT", WeightPercent: 30},
			},
		},
		10.0, 20, zerolog.Nop(),
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	NewHandler(service, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleSectorExposure(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/analysis/sector-exposure", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sectors []analysis.SectorExposure `json:"sectors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Sectors, 2)
	assert.Equal(t, "Technology", resp.Sectors[0].Sector)
	assert.Equal(t, 60.0, resp.Sectors[0].ExposurePercent)
	assert.Equal(t, "Other", resp.Sectors[1].Sector, "Unmapped tickers fall into the fallback sector")
}

func TestHandleExposureLimit(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/analysis/exposure?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries []analysis.ExposureEntry `json:"entries"`
		Limit   int                      `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 1, resp.Limit)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "AAPL", resp.Entries[0].Ticker)
}

func TestHandleExposureRejectsBadLimit(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/analysis/exposure?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleConcentration(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/analysis/concentration", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Warnings []analysis.ConcentrationWarning `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Warnings)
}

func TestHandleConcentrationRejectsBadThreshold(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest,
		doRequest(t, router, http.MethodGet, "/analysis/concentration?threshold=-2", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		doRequest(t, router, http.MethodGet, "/analysis/concentration?threshold=abc", "").Code)
}

func TestHandleDiversification(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/analysis/diversification", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var div analysis.Diversification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &div))
	assert.Equal(t, 2, div.EntryCount)
}

func TestHandlePreview(t *testing.T) {
	router := newTestRouter(t)

	body := `{
		"holdings": [
			{"ticker": "MSFT", "current_value": 100},
			{"ticker": "SPY", "current_value": 900}
		],
		"constituents": {
			"SPY": [{"etf_ticker": "SPY", "symbol": "MSFT", "weight_percent": 10}]
		},
		"threshold": 50
	}`

	rec := doRequest(t, router, http.MethodPost, "/analysis/preview", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var result analysis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, 1000.0, result.TotalValue)
	assert.Equal(t, 2, result.HoldingCount)
	require.Len(t, result.Exposure, 1, "Only the disclosed constituent is measured")
	assert.Equal(t, "MSFT", result.Exposure[0].Ticker)
	assert.Equal(t, 190.0, result.Exposure[0].TotalExposureValue)
}

func TestHandlePreviewValidatesInput(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/analysis/preview",
		`{"holdings": [{"ticker": "", "current_value": 100}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/analysis/preview",
		`{"holdings": [{"ticker": "A", "current_value": 1}],
		  "constituents": {"VOO": [{"etf_ticker": "VOO", "symbol": "A", "weight_percent": 150}]}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/analysis/preview", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
