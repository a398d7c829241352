package marketdata

import (
	"context"
	"fmt"
	"strings"

	"committee-trade-bot-go/internal/config"
	"go.uber.org/zap"
)

// PriceSource reports the latest close price for a symbol.
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (float64, error)
}

// BarsClient reads daily OHLC bars from an Alpaca-style crypto data endpoint.
type BarsClient struct {
	*restClient
	apiKey    string
	apiSecret string
}

var _ PriceSource = (*BarsClient)(nil)

// NewBarsClient creates a bars client from the market data configuration.
func NewBarsClient(cfg *config.MarketData, logger *zap.Logger) *BarsClient {
	return &BarsClient{
		restClient: newRestClient(cfg.BarsBaseURL, cfg, logger),
		apiKey:     cfg.NewsApiKey,
		apiSecret:  cfg.NewsApiSecret,
	}
}

type bar struct {
	Close float64 `json:"c"`
}

type barsResponse struct {
	Bars map[string][]bar `json:"bars"`
}

// LatestClose returns the close of the most recent daily bar. The data API
// keys crypto symbols with a slash ("BTC/USD"), so plain symbols are
// translated before the request.
func (c *BarsClient) LatestClose(ctx context.Context, symbol string) (float64, error) {
	apiSymbol := symbol
	if !strings.Contains(apiSymbol, "/") {
		apiSymbol = strings.Replace(apiSymbol, "USD", "/USD", 1)
	}

	var result barsResponse
	req := c.client.R().
		SetHeader("APCA-API-KEY-ID", c.apiKey).
		SetHeader("APCA-API-SECRET-KEY", c.apiSecret).
		SetQueryParam("symbols", apiSymbol).
		SetQueryParam("timeframe", "1D").
		SetQueryParam("limit", "1").
		SetQueryParam("sort", "desc").
		SetResult(&result)

	if _, err := c.doRequest(ctx, "GET", "/v1beta3/crypto/us/bars", req); err != nil {
		return 0, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}

	bars, ok := result.Bars[apiSymbol]
	if !ok || len(bars) == 0 {
		return 0, fmt.Errorf("no bars returned for %s", symbol)
	}
	return bars[0].Close, nil
}
