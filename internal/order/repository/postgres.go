package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/order/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateWithItems(ctx context.Context, order *model.Order) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
        INSERT INTO orders (
            id, order_number, user_id, cafe_id, status, channel,
            subtotal, discount, total_amount, payment_method, delivery_block,
            points_earned, points_redeemed, points_credited, created_at, updated_at
        )
        VALUES (
            :id, :order_number, :user_id, :cafe_id, :status, :channel,
            :subtotal, :discount, :total_amount, :payment_method, :delivery_block,
            :points_earned, :points_redeemed, :points_credited, :created_at, :updated_at
        )
    `
	if _, err = tx.NamedExecContext(ctx, orderQuery, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (
            id, order_id, menu_item_id, name, quantity,
            unit_price, total_price, instructions, created_at
        )
        VALUES (
            :id, :order_id, :menu_item_id, :name, :quantity,
            :unit_price, :total_price, :instructions, :created_at
        )
    `
	for i := range order.Items {
		if _, err = tx.NamedExecContext(ctx, itemQuery, &order.Items[i]); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE profiles
            SET total_orders = total_orders + 1,
                total_spent = total_spent + $1,
                updated_at = $2
          WHERE id = $3`,
		order.TotalAmount, order.CreatedAt, order.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile counters: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.DB.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &order.Items,
		`SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var orders []model.Order
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
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM orders" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	orderBy := "created_at DESC"
	if f.SortBy != "" {
		// Whitelist sortable fields
		switch f.SortBy {
		case "created_at":
			orderBy = "created_at"
		case "total_amount":
			orderBy = "total_amount"
		case "status":
			orderBy = "status"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM orders%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

// attachItems loads the line items for a page of orders in one query.
func (r *PGRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
	}

	query, args, err := sqlx.In(
		`SELECT * FROM order_items WHERE order_id IN (?) ORDER BY created_at`, ids)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)

	var items []model.OrderItem
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}

	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return nil
}

// statusColumns maps each forward status to the timestamp column it stamps.
var statusColumns = map[model.OrderStatus]string{
	model.StatusConfirmed: "accepted_at",
	model.StatusPreparing: "preparing_at",
	model.StatusOnTheWay:  "out_for_delivery_at",
	model.StatusCompleted: "completed_at",
}

func (r *PGRepository) Advance(ctx context.Context, id string, from, to model.OrderStatus, now time.Time) (bool, error) {
	column, ok := statusColumns[to]
	if !ok {
		return false, fmt.Errorf("no transition into status %q", to)
	}

	query := fmt.Sprintf(
		`UPDATE orders
            SET status = $1, %s = $2, updated_at = $2
          WHERE id = $3 AND status = $4`, column)
	if to == model.StatusCompleted {
		// Flipping points_credited in the same guarded UPDATE means only one
		// caller ever observes the completed transition.
		query = `
            UPDATE orders
               SET status = $1, completed_at = $2, updated_at = $2,
                   points_credited = TRUE
             WHERE id = $3 AND status = $4 AND points_credited = FALSE`
	}

	res, err := r.DB.ExecContext(ctx, query, to, now, id, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PGRepository) MarkPointsCredited(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET points_credited = TRUE WHERE id = $1 AND points_credited = FALSE`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PGRepository) ClearPointsCredited(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET points_credited = FALSE WHERE id = $1`, id)
	return err
}

func (r *PGRepository) Cancel(ctx context.Context, id, cancelledBy, reason string, now time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE orders
            SET status = $1, cancelled_at = $2, cancelled_by = $3,
                cancel_reason = $4, updated_at = $2
          WHERE id = $5 AND status NOT IN ($6, $7)`,
		model.StatusCancelled, now, cancelledBy, reason, id,
		model.StatusCompleted, model.StatusCancelled,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PGRepository) PurgeByCafe(ctx context.Context, cafeID string) (int64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM order_items
          WHERE order_id IN (SELECT id FROM orders WHERE cafe_id = $1)`, cafeID)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE cafe_id = $1`, cafeID)
	if err != nil {
		return 0, err
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return purged, tx.Commit()
}
