package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbites/order-service/internal/menu/dto"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestBulkUpdatePricePercentage(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE menu_items SET price = GREATEST\(1, ROUND\(\(price \* \(1 \+ \$1 / 100\.0\)\)::numeric, 2\)\), updated_at = NOW\(\) WHERE cafe_id = \$2`).
		WithArgs(-10.0, "cafe-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.BulkUpdatePrice(context.Background(),
		&dto.BulkFilter{CafeID: "cafe-1", Scope: "all"}, dto.PriceModePercentage, -10)

	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdatePriceFixedScopedToCategory(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE menu_items SET price = GREATEST\(1, ROUND\(\(price \+ \$1\)::numeric, 2\)\), updated_at = NOW\(\) WHERE cafe_id = \$2 AND category = \$3`).
		WithArgs(5.0, "cafe-1", "beverages").
		WillReturnResult(sqlmock.NewResult(0, 7))

	affected, err := repo.BulkUpdatePrice(context.Background(),
		&dto.BulkFilter{CafeID: "cafe-1", Scope: "category", Category: "beverages"}, dto.PriceModeFixed, 5)

	require.NoError(t, err)
	assert.Equal(t, int64(7), affected)
}

func TestBulkUpdatePriceUnknownMode(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.BulkUpdatePrice(context.Background(),
		&dto.BulkFilter{CafeID: "cafe-1"}, "bogus", 5)

	assert.Error(t, err)
}

func TestBulkUpdatePriceUnknownScope(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.BulkUpdatePrice(context.Background(),
		&dto.BulkFilter{CafeID: "cafe-1", Scope: "seasonal"}, dto.PriceModeFixed, 5)

	assert.Error(t, err)
}

func TestBulkSetAvailabilityVegScope(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE menu_items SET is_available = \$1, updated_at = NOW\(\) WHERE cafe_id = \$2 AND vegetarian = TRUE`).
		WithArgs(false, "cafe-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	affected, err := repo.BulkSetAvailability(context.Background(),
		&dto.BulkFilter{CafeID: "cafe-1", Scope: "veg"}, false)

	require.NoError(t, err)
	assert.Equal(t, int64(4), affected)
}

func TestResetDailyStockSingleCafe(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE menu_items\s+SET current_stock_quantity = daily_stock_quantity,\s+out_of_stock = \(daily_stock_quantity <= 0\),\s+updated_at = NOW\(\)\s+WHERE daily_stock_quantity IS NOT NULL AND cafe_id = \$1`).
		WithArgs("cafe-1").
		WillReturnResult(sqlmock.NewResult(0, 12))

	affected, err := repo.ResetDailyStock(context.Background(), "cafe-1")

	require.NoError(t, err)
	assert.Equal(t, int64(12), affected)
}

func TestResetDailyStockAllCafes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE menu_items\s+SET current_stock_quantity = daily_stock_quantity,\s+out_of_stock = \(daily_stock_quantity <= 0\),\s+updated_at = NOW\(\)\s+WHERE daily_stock_quantity IS NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 120))

	affected, err := repo.ResetDailyStock(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, int64(120), affected)
}
