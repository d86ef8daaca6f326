package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialRecord represents one day of price/volume data for a symbol.
// Rows are written once by the ingestion job and never updated; the pair
// (symbol, date) is unique in the store.
type FinancialRecord struct {
	ID         int             `json:"id"`
	Symbol     string          `json:"symbol"`
	Date       time.Time       `json:"date"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	ClosePrice decimal.Decimal `json:"close_price"`
	Volume     int64           `json:"volume"`
	CreatedAt  time.Time       `json:"created_at"`
}

// QueryFilter narrows a listing to a date range and/or a symbol. All fields
// are optional; a zero filter matches every record.
type QueryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Symbol    string
}

// PageRequest describes one page of a listing. Page is 1-indexed.
type PageRequest struct {
	Limit int
	Page  int
}

// Default page size and page number, matching the API defaults.
const (
	DefaultLimit = 5
	DefaultPage  = 1
)

// Offset returns the number of rows to skip for this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes the position of a returned page within the full
// filtered result set.
type Pagination struct {
	Count int `json:"count"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// AggregateResult holds the raw mean values computed by the store for one
// symbol over a date range, before any rounding happens in Go.
type AggregateResult struct {
	AvgOpenPrice  decimal.Decimal
	AvgClosePrice decimal.Decimal
	AvgVolume     decimal.Decimal
}

// StatisticsResult holds the mean open price, close price and volume for one
// symbol over an inclusive date range. It is derived on demand and never
// persisted.
type StatisticsResult struct {
	StartDate              string          `json:"start_date"`
	EndDate                string          `json:"end_date"`
	Symbol                 string          `json:"symbol"`
	AverageDailyOpenPrice  decimal.Decimal `json:"average_daily_open_price"`
	AverageDailyClosePrice decimal.Decimal `json:"average_daily_close_price"`
	AverageDailyVolume     int64           `json:"average_daily_volume"`
}

// IngestionEvent represents a Kafka event emitted after a symbol's daily
// batch has been written to the store.
type IngestionEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Fetched   int       `json:"fetched"`
	Inserted  int64     `json:"inserted"`
	Timestamp time.Time `json:"timestamp"`
}
