package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("financial_data table exists", func(t *testing.T) {
		var exists bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public'
				AND table_name = 'financial_data'
			)
		`).Scan(&exists)

		require.NoError(t, err)
		assert.True(t, exists, "table financial_data should exist")
	})

	t.Run("financial_data table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"id":          "integer",
			"symbol":      "character varying",
			"date":        "date",
			"open_price":  "numeric",
			"close_price": "numeric",
			"volume":      "bigint",
			"created_at":  "timestamp with time zone",
		}

		for colName, expectedType := range expectedColumns {
			var actualType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'financial_data' AND column_name = $1
			`, colName).Scan(&actualType)

			require.NoError(t, err, "column %s should exist in financial_data table", colName)
			assert.Equal(t, expectedType, actualType, "column %s should have type %s", colName, expectedType)
		}
	})

	t.Run("indexes exist", func(t *testing.T) {
		expectedIndexes := []string{
			"idx_financial_data_symbol_date",
			"idx_financial_data_date",
		}

		for _, index := range expectedIndexes {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM pg_indexes
					WHERE tablename = 'financial_data' AND indexname = $1
				)
			`, index).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "index %s should exist on financial_data", index)
		}
	})

	t.Run("unique constraint on symbol and date exists", func(t *testing.T) {
		var unique bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM pg_constraint c
				JOIN pg_class t ON c.conrelid = t.oid
				WHERE t.relname = 'financial_data'
				AND c.contype = 'u'
			)
		`).Scan(&unique)
		require.NoError(t, err)
		assert.True(t, unique, "financial_data should have unique constraint on (symbol, date)")
	})
}
