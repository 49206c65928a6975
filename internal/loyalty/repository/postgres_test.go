package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbites/order-service/internal/loyalty"
	"github.com/campusbites/order-service/internal/model"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func sampleTxn() *model.LoyaltyTransaction {
	orderID := "ord-1"
	return &model.LoyaltyTransaction{
		ID:           "txn-1",
		UserID:       "user-1",
		OrderID:      &orderID,
		Type:         model.LoyaltyEarned,
		PointsChange: 45,
		PointsBefore: 100,
		PointsAfter:  145,
		Description:  "Earned on order ORD-20260314-chai-point-0001",
		CreatedAt:    time.Now(),
	}
}

func TestApplyWithLedgerWritesBothRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	txn := sampleTxn()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE profiles SET loyalty_points = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(145, txn.CreatedAt, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO loyalty_transactions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyWithLedger(context.Background(), 145, txn)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyWithLedgerMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	txn := sampleTxn()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE profiles SET loyalty_points = \$1, updated_at = \$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO loyalty_transactions`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.ApplyWithLedger(context.Background(), 145, txn)

	assert.ErrorIs(t, err, loyalty.ErrDuplicateEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBalance(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT loyalty_points FROM profiles WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"loyalty_points"}).AddRow(230))

	balance, err := repo.GetBalance(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 230, balance)
}
