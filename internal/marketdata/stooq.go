package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StooqClient reads daily closes from the stooq.com CSV download endpoint.
// Yahoo does not carry the EURO STOXX 50 volatility index, stooq does, as a
// plain CSV with no API key.
type StooqClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewStooq(baseURL string, timeout time.Duration, log *zap.Logger) *StooqClient {
	return &StooqClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// LatestClose returns the last positive close for symbol in the
// [asOf-lookbackDays, asOf] window.
func (c *StooqClient) LatestClose(ctx context.Context, symbol string, lookbackDays int, asOf time.Time) (Quote, error) {
	start := asOf.AddDate(0, 0, -lookbackDays).Format("20060102")
	end := asOf.Format("20060102")
	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d", c.baseURL, url.QueryEscape(symbol), start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Quote{}, fmt.Errorf("stooq http %d: %s", resp.StatusCode, string(body))
	}
	return parseStooqCSV(resp.Body, symbol, c.log)
}

func parseStooqCSV(r io.Reader, symbol string, log *zap.Logger) (Quote, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return Quote{}, fmt.Errorf("unexpected stooq response format: %w", err)
	}
	dateCol, closeCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Date":
			dateCol = i
		case "Close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return Quote{}, fmt.Errorf("unexpected stooq response format: header %v", header)
	}

	var quote Quote
	found := false
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Quote{}, fmt.Errorf("unexpected stooq response format: %w", err)
		}
		if closeCol >= len(record) || dateCol >= len(record) {
			continue
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(record[closeCol]), 64)
		if err != nil || close <= 0 {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateCol]))
		if err != nil {
			continue
		}
		quote = Quote{Symbol: symbol, Date: date, Close: close}
		found = true
	}
	if !found {
		return Quote{}, fmt.Errorf("no valid closes returned for %s", symbol)
	}
	log.Info("stooq close fetched",
		zap.String("symbol", symbol),
		zap.Float64("close", quote.Close),
		zap.Time("date", quote.Date),
	)
	return quote, nil
}
