package marketdata

import (
	"context"
	"fmt"
	"strconv"

	"committee-trade-bot-go/internal/config"
	"go.uber.org/zap"
)

// SentimentIndex is the market-wide fear/greed reading: a 0-100 value with a
// textual classification such as "Extreme Fear" or "Greed".
type SentimentIndex struct {
	Value          int
	Classification string
}

// SentimentSource reports the latest market sentiment index.
type SentimentSource interface {
	Latest(ctx context.Context) (SentimentIndex, error)
}

// SentimentIndexClient reads the Fear & Greed index from alternative.me.
type SentimentIndexClient struct {
	*restClient
}

var _ SentimentSource = (*SentimentIndexClient)(nil)

// NewSentimentIndexClient creates a sentiment client from the market data configuration.
func NewSentimentIndexClient(cfg *config.MarketData, logger *zap.Logger) *SentimentIndexClient {
	return &SentimentIndexClient{restClient: newRestClient(cfg.SentimentBaseURL, cfg, logger)}
}

type sentimentResponse struct {
	Data []struct {
		Value               string `json:"value"` // the API serializes the number as a string
		ValueClassification string `json:"value_classification"`
	} `json:"data"`
}

// Latest returns the most recent index reading.
func (c *SentimentIndexClient) Latest(ctx context.Context) (SentimentIndex, error) {
	var result sentimentResponse
	req := c.client.R().
		SetQueryParam("limit", "1").
		SetResult(&result)

	if _, err := c.doRequest(ctx, "GET", "/fng/", req); err != nil {
		return SentimentIndex{}, fmt.Errorf("failed to get sentiment index: %w", err)
	}

	if len(result.Data) == 0 {
		return SentimentIndex{}, fmt.Errorf("sentiment index returned no data")
	}

	value, err := strconv.Atoi(result.Data[0].Value)
	if err != nil {
		return SentimentIndex{}, fmt.Errorf("sentiment index value %q is not a number: %w", result.Data[0].Value, err)
	}

	return SentimentIndex{
		Value:          value,
		Classification: result.Data[0].ValueClassification,
	}, nil
}
