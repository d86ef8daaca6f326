package query

import (
	"context"
	"fmt"
	"time"

	"github.com/velwu/docker-fin-data/internal/models"
)

const dateLayout = "2006-01-02"

// Store is the narrow view of the record store the engine needs: counting,
// ordered bounded fetch, symbol existence and aggregate computation.
type Store interface {
	CountFinancialData(ctx context.Context, filter models.QueryFilter) (int, error)
	ListFinancialData(ctx context.Context, filter models.QueryFilter, limit, offset int) ([]*models.FinancialRecord, error)
	SymbolExists(ctx context.Context, symbol string) (bool, error)
	AggregateBySymbolAndRange(ctx context.Context, symbol string, startDate, endDate time.Time) (*models.AggregateResult, bool, error)
}

// Engine serves filtered, paginated listings and aggregate statistics over
// the financial_data store. It holds no mutable state; each request is
// handled independently.
type Engine struct {
	store Store
}

// NewEngine creates a query engine over the given store
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// ListRequest describes one listing request. Date fields and Symbol are raw
// query-string values; empty means absent. Limit and Page carry the already
// parsed integers (the HTTP layer substitutes defaults for malformed input).
type ListRequest struct {
	StartDate string
	EndDate   string
	Symbol    string
	Limit     int
	Page      int
}

// ListResult is one page of records plus pagination metadata.
type ListResult struct {
	Records    []*models.FinancialRecord
	Pagination models.Pagination
}

// List executes a count query and a bounded page query for the request and
// computes the pagination metadata.
//
// Non-positive limit and page values take the same fallback path as
// malformed integers: limit < 1 becomes the default page size, page < 1
// becomes the first page.
func (e *Engine) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	filter, err := buildFilter(req.StartDate, req.EndDate, req.Symbol)
	if err != nil {
		return nil, err
	}

	page := models.PageRequest{Limit: req.Limit, Page: req.Page}
	if page.Limit < 1 {
		page.Limit = models.DefaultLimit
	}
	if page.Page < 1 {
		page.Page = models.DefaultPage
	}

	count, err := e.store.CountFinancialData(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailableStore, err)
	}

	records, err := e.store.ListFinancialData(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailableStore, err)
	}

	return &ListResult{
		Records: records,
		Pagination: models.Pagination{
			Count: count,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: (count + page.Limit - 1) / page.Limit,
		},
	}, nil
}

// StatsRequest describes one statistics request. All three fields are
// mandatory.
type StatsRequest struct {
	StartDate string
	EndDate   string
	Symbol    string
}

// Statistics validates the request, confirms the symbol has data, and
// computes the mean open price, close price and volume across the inclusive
// date range. A nil result with a nil error means the symbol exists but has
// no rows in the window; callers report that as an empty payload, not an
// error.
func (e *Engine) Statistics(ctx context.Context, req StatsRequest) (*models.StatisticsResult, error) {
	if req.StartDate == "" || req.EndDate == "" || req.Symbol == "" {
		return nil, fmt.Errorf("%w: start_date, end_date, and symbol are all required", ErrMissingParameter)
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be in YYYY-MM-DD format", ErrInvalidDateRange)
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be in YYYY-MM-DD format", ErrInvalidDateRange)
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("%w: start_date cannot be after end_date", ErrInvalidDateRange)
	}

	exists, err := e.store.SymbolExists(ctx, req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailableStore, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: symbol '%s' not found in the database", ErrUnknownSymbol, req.Symbol)
	}

	agg, found, err := e.store.AggregateBySymbolAndRange(ctx, req.Symbol, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailableStore, err)
	}
	if !found {
		return nil, nil
	}

	// Prices round to 2 decimals; the volume mean truncates toward zero.
	return &models.StatisticsResult{
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		Symbol:                 req.Symbol,
		AverageDailyOpenPrice:  agg.AvgOpenPrice.Round(2),
		AverageDailyClosePrice: agg.AvgClosePrice.Round(2),
		AverageDailyVolume:     agg.AvgVolume.IntPart(),
	}, nil
}

// buildFilter parses the optional listing filter fields. A present but
// unparseable date is rejected rather than passed through to the store.
func buildFilter(startDate, endDate, symbol string) (models.QueryFilter, error) {
	var filter models.QueryFilter

	if startDate != "" {
		d, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return filter, fmt.Errorf("%w: start_date must be in YYYY-MM-DD format", ErrInvalidDateRange)
		}
		filter.StartDate = &d
	}
	if endDate != "" {
		d, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return filter, fmt.Errorf("%w: end_date must be in YYYY-MM-DD format", ErrInvalidDateRange)
		}
		filter.EndDate = &d
	}
	filter.Symbol = symbol

	return filter, nil
}
