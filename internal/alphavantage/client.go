package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/velwu/docker-fin-data/internal/httputil"
	"github.com/velwu/docker-fin-data/internal/models"
)

const dateLayout = "2006-01-02"

// Client fetches daily time series data from the Alpha Vantage API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an Alpha Vantage client. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co/query"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// dailyEntry mirrors one day's fields in the TIME_SERIES_DAILY payload.
type dailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type timeSeriesResponse struct {
	ErrorMessage string                `json:"Error Message"`
	Note         string                `json:"Note"`
	TimeSeries   map[string]dailyEntry `json:"Time Series (Daily)"`
}

// FetchDailySeries retrieves the daily time series for a symbol and returns
// the records dated within [today-days, today]. Malformed per-day entries
// are skipped rather than failing the whole fetch.
func (c *Client) FetchDailySeries(ctx context.Context, symbol string, days int) ([]*models.FinancialRecord, error) {
	resp, err := httputil.Do(ctx, c.httpClient, httputil.DefaultRetry, func() (*http.Request, error) {
		params := url.Values{}
		params.Set("function", "TIME_SERIES_DAILY")
		params.Set("symbol", symbol)
		params.Set("apikey", c.apiKey)
		params.Set("outputsize", "full")
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily series for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching daily series for %s", resp.StatusCode, symbol)
	}

	var payload timeSeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode daily series for %s: %w", symbol, err)
	}
	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage error for %s: %s", symbol, payload.ErrorMessage)
	}
	if payload.Note != "" {
		return nil, fmt.Errorf("alphavantage throttled request for %s: %s", symbol, payload.Note)
	}

	today := time.Now().Truncate(24 * time.Hour)
	targetDate := today.AddDate(0, 0, -days)

	var records []*models.FinancialRecord
	for dateStr, entry := range payload.TimeSeries {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			log.Printf("Skipping entry with unparseable date %q for %s", dateStr, symbol)
			continue
		}
		if date.Before(targetDate) || date.After(today) {
			continue
		}

		record, err := entry.toRecord(symbol, date)
		if err != nil {
			log.Printf("Skipping malformed entry for %s on %s: %v", symbol, dateStr, err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func (e dailyEntry) toRecord(symbol string, date time.Time) (*models.FinancialRecord, error) {
	open, err := decimal.NewFromString(e.Open)
	if err != nil {
		return nil, fmt.Errorf("invalid open price %q: %w", e.Open, err)
	}
	closePrice, err := decimal.NewFromString(e.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close price %q: %w", e.Close, err)
	}
	volume, err := strconv.ParseInt(e.Volume, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid volume %q: %w", e.Volume, err)
	}

	return &models.FinancialRecord{
		Symbol:     symbol,
		Date:       date,
		OpenPrice:  open,
		ClosePrice: closePrice,
		Volume:     volume,
	}, nil
}
