package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/velwu/docker-fin-data/internal/models"
)

// Fetcher retrieves the daily time series for one symbol, bounded to the
// trailing number of days.
type Fetcher interface {
	FetchDailySeries(ctx context.Context, symbol string, days int) ([]*models.FinancialRecord, error)
}

// RecordStore is the write side of the financial_data table. Rows that
// already exist for a (symbol, date) pair are skipped, never overwritten.
type RecordStore interface {
	InsertFinancialDataBatch(ctx context.Context, records []*models.FinancialRecord) (int64, error)
}

// EventPublisher announces completed symbol batches. A nil publisher
// disables publishing.
type EventPublisher interface {
	PublishRecordsIngested(ctx context.Context, symbol string, fetched int, inserted int64) error
}

// Service fetches daily price data for a symbol list and upserts it into
// the record store.
type Service struct {
	fetcher   Fetcher
	store     RecordStore
	publisher EventPublisher
	symbols   []string
}

// NewService creates an ingestion service. publisher may be nil.
func NewService(fetcher Fetcher, store RecordStore, publisher EventPublisher, symbols []string) *Service {
	return &Service{
		fetcher:   fetcher,
		store:     store,
		publisher: publisher,
		symbols:   symbols,
	}
}

// RunOnce ingests the trailing window of daily data for every configured
// symbol. A failing symbol does not stop the remaining symbols; the first
// failure is returned after all symbols have been attempted.
func (s *Service) RunOnce(ctx context.Context, days int) error {
	var firstErr error

	for _, symbol := range s.symbols {
		log.Printf("Fetching data for %s", symbol)

		records, err := s.fetcher.FetchDailySeries(ctx, symbol, days)
		if err != nil {
			log.Printf("Failed to fetch %s: %v", symbol, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to ingest %s: %w", symbol, err)
			}
			continue
		}

		inserted, err := s.store.InsertFinancialDataBatch(ctx, records)
		if err != nil {
			log.Printf("Failed to insert records for %s: %v", symbol, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to ingest %s: %w", symbol, err)
			}
			continue
		}

		log.Printf("Ingested %s: %d fetched, %d inserted", symbol, len(records), inserted)

		if s.publisher != nil {
			if err := s.publisher.PublishRecordsIngested(ctx, symbol, len(records), inserted); err != nil {
				// Publishing is best-effort; the rows are already committed.
				log.Printf("Failed to publish ingestion event for %s: %v", symbol, err)
			}
		}
	}

	return firstErr
}

// Run ingests immediately and then on every interval tick until the context
// is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration, days int) error {
	if err := s.RunOnce(ctx, days); err != nil {
		log.Printf("Ingestion run failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ingestion service shutting down...")
			return nil
		case <-ticker.C:
			if err := s.RunOnce(ctx, days); err != nil {
				log.Printf("Ingestion run failed: %v", err)
			}
		}
	}
}
