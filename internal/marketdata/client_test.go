package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"committee-trade-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// newTestRestClient points a restClient at the given test server with the
// rate limiter disabled.
func newTestRestClient(server *httptest.Server) *restClient {
	return &restClient{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}
}

func testMarketDataConfig(baseURL string) *config.MarketData {
	return &config.MarketData{
		NewsBaseURL:       baseURL,
		NewsApiKey:        "test_api_key",
		NewsApiSecret:     "test_api_secret",
		BarsBaseURL:       baseURL,
		IndicatorsBaseURL: baseURL,
		IndicatorsApiKey:  "test_api_key",
		SentimentBaseURL:  baseURL,
		RateLimit:         1000,
		RateLimitBurst:    10,
		TimeoutSeconds:    5,
	}
}

func TestDoRequest_RetriesOnServerError(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	rc := newTestRestClient(server)

	// Act
	resp, err := rc.doRequest(context.Background(), "GET", "/retry", rc.client.R())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoRequest_NoRetryOnClientError(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "invalid key"}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()
	rc := newTestRestClient(server)

	// Act
	_, err := rc.doRequest(context.Background(), "GET", "/forbidden", rc.client.R())

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewsClient_LatestHeadlines(t *testing.T) {
	// Arrange
	mockResponse := `{"news": [
		{"headline": "BTC breaks out", "summary": "ignored"},
		{"headline": "", "summary": "Summary used as fallback"},
		{"headline": "   ", "summary": ""}
	]}`
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta1/news", r.URL.Path)
		assert.Equal(t, "test_api_key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "BTCUSD,ETHUSD", r.URL.Query().Get("symbols"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewNewsClient(testMarketDataConfig(server.URL), zap.NewNop())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	// Act
	headlines, err := client.LatestHeadlines(context.Background(), []string{"BTCUSD", "ETHUSD"}, 10)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"BTC breaks out", "Summary used as fallback"}, headlines)
}

func TestNewsClient_LimitClamped(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"news": []}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewNewsClient(testMarketDataConfig(server.URL), zap.NewNop())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	headlines, err := client.LatestHeadlines(context.Background(), []string{"BTCUSD"}, 500)

	assert.NoError(t, err)
	assert.Empty(t, headlines)
}

func TestBarsClient_LatestClose(t *testing.T) {
	// Arrange
	mockResponse := `{"bars": {"BTC/USD": [{"c": 96123.45}]}}`
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta3/crypto/us/bars", r.URL.Path)
		assert.Equal(t, "BTC/USD", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewBarsClient(testMarketDataConfig(server.URL), zap.NewNop())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	// Act
	price, err := client.LatestClose(context.Background(), "BTCUSD")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 96123.45, price)
}

func TestBarsClient_NoBars(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bars": {}}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewBarsClient(testMarketDataConfig(server.URL), zap.NewNop())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	_, err := client.LatestClose(context.Background(), "BTCUSD")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no bars returned")
}

func TestIndicatorClient_SMA(t *testing.T) {
	// Arrange
	mockResponse := `{"results": {"values": [
		{"timestamp": 1700000000000, "value": 95100.5},
		{"timestamp": 1699913600000, "value": 95000.0}
	]}}`
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/indicators/sma/X:BTCUSD", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("window"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewIndicatorClient(testMarketDataConfig(server.URL), zap.NewNop())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	// Act
	values, err := client.SMA(context.Background(), "BTCUSD", 25, 10)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, values, 2)
	assert.Equal(t, 95100.5, values[0].Value)
	assert.Equal(t, int64(1700000000000), values[0].Timestamp)
}

func TestSentimentIndexClient_Latest(t *testing.T) {
	// Arrange
	mockResponse := `{"data": [{"value": "72", "value_classification": "Greed"}]}`
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fng/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockResponse))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewSentimentIndexClient(testMarketDataConfig(server.URL), zap.NewNop())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	// Act
	index, err := client.Latest(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 72, index.Value)
	assert.Equal(t, "Greed", index.Classification)
}

func TestSentimentIndexClient_NonNumericValue(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"value": "n/a", "value_classification": "Unknown"}]}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewSentimentIndexClient(testMarketDataConfig(server.URL), zap.NewNop())
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	_, err := client.Latest(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")
}
