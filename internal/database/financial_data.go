package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/velwu/docker-fin-data/internal/models"
)

// buildFilterClause turns a QueryFilter into a WHERE clause with bound
// parameters. Filter values are never interpolated into the query text.
func buildFilterClause(filter models.QueryFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	if filter.Symbol != "" {
		args = append(args, filter.Symbol)
		conditions = append(conditions, fmt.Sprintf("symbol = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "1=1", nil
	}
	return strings.Join(conditions, " AND "), args
}

// CountFinancialData returns the number of records matching the filter
func (db *DB) CountFinancialData(ctx context.Context, filter models.QueryFilter) (int, error) {
	whereClause, args := buildFilterClause(filter)
	query := fmt.Sprintf("SELECT COUNT(*) FROM financial_data WHERE %s", whereClause)

	var count int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count financial data: %w", err)
	}
	return count, nil
}

// ListFinancialData returns one page of records matching the filter,
// ordered by date ascending
func (db *DB) ListFinancialData(ctx context.Context, filter models.QueryFilter, limit, offset int) ([]*models.FinancialRecord, error) {
	whereClause, args := buildFilterClause(filter)
	query := fmt.Sprintf(`
		SELECT id, symbol, date, open_price, close_price, volume, created_at
		FROM financial_data
		WHERE %s
		ORDER BY date ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list financial data: %w", err)
	}
	defer rows.Close()

	var records []*models.FinancialRecord
	for rows.Next() {
		var r models.FinancialRecord
		err := rows.Scan(
			&r.ID, &r.Symbol, &r.Date, &r.OpenPrice, &r.ClosePrice, &r.Volume, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financial data: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate financial data: %w", err)
	}

	return records, nil
}

// SymbolExists reports whether any record exists for the symbol,
// independent of date
func (db *DB) SymbolExists(ctx context.Context, symbol string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM financial_data WHERE symbol = $1)`

	var exists bool
	if err := db.conn.QueryRowContext(ctx, query, symbol).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check symbol existence: %w", err)
	}
	return exists, nil
}

// AggregateBySymbolAndRange computes the mean open price, close price and
// volume for a symbol across an inclusive date range. The second return
// value is false when no rows match (the AVG aggregates come back NULL).
func (db *DB) AggregateBySymbolAndRange(ctx context.Context, symbol string, startDate, endDate time.Time) (*models.AggregateResult, bool, error) {
	query := `
		SELECT AVG(open_price), AVG(close_price), AVG(volume::numeric)
		FROM financial_data
		WHERE symbol = $1 AND date BETWEEN $2 AND $3
	`
	var avgOpen, avgClose, avgVolume sql.NullString

	err := db.conn.QueryRowContext(ctx, query, symbol, startDate, endDate).Scan(&avgOpen, &avgClose, &avgVolume)
	if err != nil {
		return nil, false, fmt.Errorf("failed to aggregate financial data: %w", err)
	}

	if !avgOpen.Valid || !avgClose.Valid || !avgVolume.Valid {
		return nil, false, nil
	}

	var result models.AggregateResult
	if result.AvgOpenPrice, err = decimal.NewFromString(avgOpen.String); err != nil {
		return nil, false, fmt.Errorf("failed to parse average open price: %w", err)
	}
	if result.AvgClosePrice, err = decimal.NewFromString(avgClose.String); err != nil {
		return nil, false, fmt.Errorf("failed to parse average close price: %w", err)
	}
	if result.AvgVolume, err = decimal.NewFromString(avgVolume.String); err != nil {
		return nil, false, fmt.Errorf("failed to parse average volume: %w", err)
	}

	return &result, true, nil
}

// InsertFinancialDataBatch inserts daily records in one transaction,
// skipping rows that already exist for the same (symbol, date). Returns the
// number of rows actually inserted.
func (db *DB) InsertFinancialDataBatch(ctx context.Context, records []*models.FinancialRecord) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO financial_data (symbol, date, open_price, close_price, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, date) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	var inserted int64
	for _, r := range records {
		result, err := stmt.ExecContext(ctx, r.Symbol, r.Date, r.OpenPrice, r.ClosePrice, r.Volume, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert financial data for %s: %w", r.Symbol, err)
		}
		rowsAffected, _ := result.RowsAffected()
		inserted += rowsAffected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// GetFinancialRecordBySymbolAndDate retrieves a single record
func (db *DB) GetFinancialRecordBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*models.FinancialRecord, error) {
	query := `
		SELECT id, symbol, date, open_price, close_price, volume, created_at
		FROM financial_data
		WHERE symbol = $1 AND date = $2
	`
	var r models.FinancialRecord
	err := db.conn.QueryRowContext(ctx, query, symbol, date).Scan(
		&r.ID, &r.Symbol, &r.Date, &r.OpenPrice, &r.ClosePrice, &r.Volume, &r.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("financial data not found for %s on %s", symbol, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get financial data: %w", err)
	}
	return &r, nil
}
