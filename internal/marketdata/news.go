package marketdata

import (
	"context"
	"fmt"
	"strings"

	"committee-trade-bot-go/internal/config"
	"go.uber.org/zap"
)

// NewsSource fetches recent headlines for a set of symbols.
type NewsSource interface {
	LatestHeadlines(ctx context.Context, symbols []string, limit int) ([]string, error)
}

// NewsClient reads crypto news from an Alpaca-style news endpoint.
type NewsClient struct {
	*restClient
	apiKey    string
	apiSecret string
}

var _ NewsSource = (*NewsClient)(nil)

// NewNewsClient creates a news client from the market data configuration.
func NewNewsClient(cfg *config.MarketData, logger *zap.Logger) *NewsClient {
	return &NewsClient{
		restClient: newRestClient(cfg.NewsBaseURL, cfg, logger),
		apiKey:     cfg.NewsApiKey,
		apiSecret:  cfg.NewsApiSecret,
	}
}

type newsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
}

type newsResponse struct {
	News []newsItem `json:"news"`
}

// LatestHeadlines returns up to limit recent headlines, newest first. Items
// without a headline fall back to their summary; blank items are dropped.
func (c *NewsClient) LatestHeadlines(ctx context.Context, symbols []string, limit int) ([]string, error) {
	if limit < 1 {
		limit = 1
	} else if limit > 50 {
		limit = 50
	}

	var result newsResponse
	req := c.client.R().
		SetHeader("APCA-API-KEY-ID", c.apiKey).
		SetHeader("APCA-API-SECRET-KEY", c.apiSecret).
		SetQueryParam("symbols", strings.Join(symbols, ",")).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("sort", "desc").
		SetResult(&result)

	if _, err := c.doRequest(ctx, "GET", "/v1beta1/news", req); err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}

	headlines := make([]string, 0, len(result.News))
	for _, item := range result.News {
		text := strings.TrimSpace(item.Headline)
		if text == "" {
			text = strings.TrimSpace(item.Summary)
		}
		if text != "" {
			headlines = append(headlines, text)
		}
	}
	return headlines, nil
}
