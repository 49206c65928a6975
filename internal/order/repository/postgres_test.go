package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbites/order-service/internal/model"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestAdvanceStampsStatusColumn(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectExec(`UPDATE orders\s+SET status = \$1, accepted_at = \$2, updated_at = \$2\s+WHERE id = \$3 AND status = \$4`).
		WithArgs(model.StatusConfirmed, now, "ord-1", model.StatusReceived).
		WillReturnResult(sqlmock.NewResult(0, 1))

	moved, err := repo.Advance(context.Background(), "ord-1", model.StatusReceived, model.StatusConfirmed, now)

	require.NoError(t, err)
	assert.True(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceCompletionFlipsCreditFlag(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectExec(`UPDATE orders\s+SET status = \$1, completed_at = \$2, updated_at = \$2,\s+points_credited = TRUE\s+WHERE id = \$3 AND status = \$4 AND points_credited = FALSE`).
		WithArgs(model.StatusCompleted, now, "ord-1", model.StatusOnTheWay).
		WillReturnResult(sqlmock.NewResult(0, 1))

	moved, err := repo.Advance(context.Background(), "ord-1", model.StatusOnTheWay, model.StatusCompleted, now)

	require.NoError(t, err)
	assert.True(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceLosesRace(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectExec(`UPDATE orders`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.Advance(context.Background(), "ord-1", model.StatusReceived, model.StatusConfirmed, now)

	require.NoError(t, err)
	assert.False(t, moved)
}

func TestAdvanceRejectsUnknownTarget(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Advance(context.Background(), "ord-1", model.StatusReceived, model.StatusCancelled, time.Now())

	assert.Error(t, err)
}

func TestMarkPointsCreditedGuarded(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE orders SET points_credited = TRUE WHERE id = \$1 AND points_credited = FALSE`).
		WithArgs("ord-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	flipped, err := repo.MarkPointsCredited(context.Background(), "ord-1")

	require.NoError(t, err)
	assert.True(t, flipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPointsCreditedAlreadySet(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE orders SET points_credited = TRUE`).
		WithArgs("ord-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	flipped, err := repo.MarkPointsCredited(context.Background(), "ord-1")

	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestClearPointsCredited(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE orders SET points_credited = FALSE WHERE id = \$1`).
		WithArgs("ord-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearPointsCredited(context.Background(), "ord-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelGuardsTerminalStatuses(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectExec(`UPDATE orders\s+SET status = \$1, cancelled_at = \$2, cancelled_by = \$3,\s+cancel_reason = \$4, updated_at = \$2\s+WHERE id = \$5 AND status NOT IN \(\$6, \$7\)`).
		WithArgs(model.StatusCancelled, now, "customer", "changed my mind", "ord-1",
			model.StatusCompleted, model.StatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cancelled, err := repo.Cancel(context.Background(), "ord-1", "customer", "changed my mind", now)

	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDLoadsItems(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM orders WHERE id = \$1 LIMIT 1`).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number", "user_id", "cafe_id", "status"}).
			AddRow("ord-1", "ORD-20260314-chai-point-0001", "user-1", "cafe-1", "received"))

	mock.ExpectQuery(`SELECT \* FROM order_items WHERE order_id = \$1 ORDER BY created_at`).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "menu_item_id", "name", "quantity", "unit_price", "total_price"}).
			AddRow("li-1", "ord-1", "item-1", "Masala Dosa", 2, 100.0, 200.0).
			AddRow("li-2", "ord-1", "item-2", "Filter Coffee", 1, 40.0, 40.0))

	o, err := repo.FindByID(context.Background(), "ord-1")

	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, model.StatusReceived, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Filter Coffee", o.Items[1].Name)
}

func TestFindByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM orders WHERE id = \$1 LIMIT 1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	o, err := repo.FindByID(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestPurgeByCafeDeletesItemsFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM order_items\s+WHERE order_id IN \(SELECT id FROM orders WHERE cafe_id = \$1\)`).
		WithArgs("cafe-1").
		WillReturnResult(sqlmock.NewResult(0, 40))
	mock.ExpectExec(`DELETE FROM orders WHERE cafe_id = \$1`).
		WithArgs("cafe-1").
		WillReturnResult(sqlmock.NewResult(0, 17))
	mock.ExpectCommit()

	purged, err := repo.PurgeByCafe(context.Background(), "cafe-1")

	require.NoError(t, err)
	assert.Equal(t, int64(17), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
