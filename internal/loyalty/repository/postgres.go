package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/campusbites/order-service/internal/loyalty"
	"github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetBalance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := r.DB.GetContext(ctx, &balance, `SELECT loyalty_points FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *PGRepository) ApplyWithLedger(ctx context.Context, newBalance int, txn *model.LoyaltyTransaction) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE profiles SET loyalty_points = $1, updated_at = $2 WHERE id = $3`,
		newBalance, txn.CreatedAt, txn.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	insertQuery := `
        INSERT INTO loyalty_transactions (
            id, user_id, cafe_id, order_id, type,
            points_change, points_before, points_after, description, created_at
        )
        VALUES (
            :id, :user_id, :cafe_id, :order_id, :type,
            :points_change, :points_before, :points_after, :description, :created_at
        )
    `
	_, err = tx.NamedExecContext(ctx, insertQuery, txn)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: the (order_id, type) uniqueness makes per-order credits and
		// debits exactly-once.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return loyalty.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert ledger row: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.HistoryFilters) ([]model.LoyaltyTransaction, int, error) {
	var items []model.LoyaltyTransaction
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if f.CafeID != "" {
		conditions = append(conditions, "cafe_id = :cafe_id")
		args["cafe_id"] = f.CafeID
	}
	if f.Type != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.Type
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM loyalty_transactions" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM loyalty_transactions" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) SumLedger(ctx context.Context, userID string) (int, error) {
	var sum int
	err := r.DB.GetContext(ctx, &sum,
		`SELECT COALESCE(SUM(points_change), 0) FROM loyalty_transactions WHERE user_id = $1`, userID)
	return sum, err
}

func (r *PGRepository) SetBalance(ctx context.Context, userID string, balance int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET loyalty_points = $1, updated_at = NOW() WHERE id = $2`, balance, userID)
	return err
}
