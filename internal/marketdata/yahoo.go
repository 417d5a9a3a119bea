package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// YahooClient reads daily closes from the Yahoo Finance chart endpoint.
type YahooClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewYahoo(baseURL string, timeout time.Duration, log *zap.Logger) *YahooClient {
	return &YahooClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// LatestClose returns the most recent positive close printed for symbol
// within the lookback window.
func (c *YahooClient) LatestClose(ctx context.Context, symbol string, lookbackDays int) (Quote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d", c.baseURL, url.PathEscape(symbol), lookbackDays)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	// Yahoo rejects requests without a browser-looking user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Quote{}, fmt.Errorf("yahoo http %d: %s", resp.StatusCode, string(body))
	}
	var data yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Quote{}, err
	}
	if data.Chart.Error != nil {
		return Quote{}, fmt.Errorf("yahoo chart error for %s: %s (%s)", symbol, data.Chart.Error.Description, data.Chart.Error.Code)
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return Quote{}, fmt.Errorf("no chart data returned for %s", symbol)
	}
	result := data.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		quote := Quote{Symbol: symbol, Close: *closes[i]}
		if i < len(result.Timestamp) {
			quote.Date = time.Unix(result.Timestamp[i], 0).UTC()
		}
		c.log.Info("yahoo close fetched",
			zap.String("symbol", symbol),
			zap.Float64("close", quote.Close),
			zap.Time("date", quote.Date),
		)
		return quote, nil
	}
	return Quote{}, fmt.Errorf("no close printed for %s", symbol)
}
