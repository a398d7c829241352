package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"committee-trade-bot-go/internal/config"
	"committee-trade-bot-go/internal/ledger"
	"committee-trade-bot-go/internal/models"
	"committee-trade-bot-go/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubRunner struct {
	lastSymbols   []string
	lastNewsLimit int
	result        *pipeline.Context
}

func (r *stubRunner) Run(_ context.Context, symbols []string, newsLimit int) *pipeline.Context {
	r.lastSymbols = symbols
	r.lastNewsLimit = newsLimit
	if r.result != nil {
		return r.result
	}
	return pipeline.NewContext(symbols, newsLimit)
}

type stubLedger struct {
	history   []models.Transaction
	pnl       ledger.PnLSummary
	portfolio ledger.PortfolioSummary
	err       error
}

func (l *stubLedger) History(int, string) ([]models.Transaction, error) {
	return l.history, l.err
}

func (l *stubLedger) PnLSummary(windowDays int) (ledger.PnLSummary, error) {
	l.pnl.PeriodDays = windowDays
	return l.pnl, l.err
}

func (l *stubLedger) PortfolioSummary() (ledger.PortfolioSummary, error) {
	return l.portfolio, l.err
}

type stubSchedule struct {
	next time.Time
}

func (s *stubSchedule) NextRun() time.Time { return s.next }

func newTestServer(runner *stubRunner, led *stubLedger) *Server {
	return New(&config.Server{Port: 0}, runner, led, nil, zap.NewNop())
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubLedger{})

	w := doRequest(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestAnalyze_Success(t *testing.T) {
	rc := pipeline.NewContext([]string{"ETHUSD"}, 5)
	price := 3200.0
	rc.CurrentPrice = &price
	rc.Decision = &pipeline.Decision{FinalDecision: "hold", Reasoning: "No clear edge."}
	runner := &stubRunner{result: rc}
	s := newTestServer(runner, &stubLedger{})

	w := doRequest(s, http.MethodPost, "/api/trading/analyze", `{"symbols": ["ETHUSD"], "news_limit": 5}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ETHUSD"}, runner.lastSymbols)
	assert.Equal(t, 5, runner.lastNewsLimit)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"final_decision":"hold"`)
	assert.Contains(t, w.Body.String(), `"current_price":3200`)
}

func TestAnalyze_EmptyBodyUsesDefaults(t *testing.T) {
	runner := &stubRunner{}
	s := newTestServer(runner, &stubLedger{})

	w := doRequest(s, http.MethodPost, "/api/trading/analyze", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, runner.lastSymbols)
	assert.Equal(t, 0, runner.lastNewsLimit)
}

func TestAnalyze_ReportsRunError(t *testing.T) {
	rc := pipeline.NewContext(nil, 0)
	rc.SetError("error in arbiter: model timeout")
	s := newTestServer(&stubRunner{result: rc}, &stubLedger{})

	w := doRequest(s, http.MethodPost, "/api/trading/analyze", `{}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "error in arbiter")
}

func TestTransactions(t *testing.T) {
	led := &stubLedger{history: []models.Transaction{
		{ID: 2, Symbol: "BTCUSD", Action: models.ActionSell},
		{ID: 1, Symbol: "BTCUSD", Action: models.ActionBuy},
	}}
	s := newTestServer(&stubRunner{}, led)

	w := doRequest(s, http.MethodGet, "/api/trading/transactions?limit=10", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestTransactions_InvalidLimit(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubLedger{})

	w := doRequest(s, http.MethodGet, "/api/trading/transactions?limit=zero", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPortfolio(t *testing.T) {
	led := &stubLedger{portfolio: ledger.PortfolioSummary{
		AvailableUSD:   8000,
		Positions:      map[string]ledger.PositionDetail{"BTCUSD": {Quantity: 0.05}},
		TotalPositions: 1,
	}}
	s := newTestServer(&stubRunner{}, led)

	w := doRequest(s, http.MethodGet, "/api/trading/portfolio", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available_usd":8000`)
	assert.Contains(t, w.Body.String(), `"total_positions":1`)
}

func TestPnL_DefaultWindow(t *testing.T) {
	led := &stubLedger{pnl: ledger.PnLSummary{TotalPnL: 500, TradeCount: 1, AvgPnLPerTrade: 500}}
	s := newTestServer(&stubRunner{}, led)

	w := doRequest(s, http.MethodGet, "/api/trading/pnl", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"period_days":30`)
	assert.Contains(t, w.Body.String(), `"total_pnl":500`)
}

func TestSchedulerStatus_Enabled(t *testing.T) {
	next := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	s := New(&config.Server{Port: 0}, &stubRunner{}, &stubLedger{}, &stubSchedule{next: next}, zap.NewNop())

	w := doRequest(s, http.MethodGet, "/api/trading/scheduler-status", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enabled":true`)
	assert.Contains(t, w.Body.String(), "2025-03-10T18:00:00Z")
}

func TestSchedulerStatus_Disabled(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubLedger{})

	w := doRequest(s, http.MethodGet, "/api/trading/scheduler-status", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled": false}`, w.Body.String())
}

func TestPnL_InvalidDays(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubLedger{})

	w := doRequest(s, http.MethodGet, "/api/trading/pnl?days=-1", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
