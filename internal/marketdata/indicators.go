package marketdata

import (
	"context"
	"fmt"
	"strings"

	"committee-trade-bot-go/internal/config"
	"go.uber.org/zap"
)

// SMAValue is one point of a simple-moving-average series.
type SMAValue struct {
	Timestamp int64   `json:"timestamp"` // Unix milliseconds
	Value     float64 `json:"value"`
}

// IndicatorSource fetches pre-computed indicator series.
type IndicatorSource interface {
	SMA(ctx context.Context, symbol string, window, limit int) ([]SMAValue, error)
}

// IndicatorClient reads SMA series from a Polygon-style indicator endpoint.
type IndicatorClient struct {
	*restClient
	apiKey string
}

var _ IndicatorSource = (*IndicatorClient)(nil)

// NewIndicatorClient creates an indicator client from the market data configuration.
func NewIndicatorClient(cfg *config.MarketData, logger *zap.Logger) *IndicatorClient {
	return &IndicatorClient{
		restClient: newRestClient(cfg.IndicatorsBaseURL, cfg, logger),
		apiKey:     cfg.IndicatorsApiKey,
	}
}

type smaResponse struct {
	Results struct {
		Values []SMAValue `json:"values"`
	} `json:"results"`
}

// SMA returns the latest limit values of the simple moving average with the
// given window, newest first. Crypto symbols carry the "X:" prefix on the
// indicator API.
func (c *IndicatorClient) SMA(ctx context.Context, symbol string, window, limit int) ([]SMAValue, error) {
	apiSymbol := symbol
	if !strings.HasPrefix(apiSymbol, "X:") {
		apiSymbol = "X:" + apiSymbol
	}

	var result smaResponse
	req := c.client.R().
		SetQueryParam("timespan", "day").
		SetQueryParam("window", fmt.Sprintf("%d", window)).
		SetQueryParam("series_type", "close").
		SetQueryParam("order", "desc").
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("apiKey", c.apiKey).
		SetResult(&result)

	if _, err := c.doRequest(ctx, "GET", "/v1/indicators/sma/"+apiSymbol, req); err != nil {
		return nil, fmt.Errorf("failed to get SMA %d for %s: %w", window, symbol, err)
	}

	return result.Results.Values, nil
}
