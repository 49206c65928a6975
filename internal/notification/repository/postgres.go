package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/notification/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO order_notifications (
            id, user_id, cafe_id, order_id, type, message, is_read, created_at
        )
        VALUES (
            :id, :user_id, :cafe_id, :order_id, :type, :message, :is_read, :created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, n)
	return err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.NotificationFilters) ([]model.Notification, int, error) {
	var items []model.Notification
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
	if f.UnreadOnly {
		conditions = append(conditions, "is_read = FALSE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM order_notifications" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM order_notifications" + whereClause + " ORDER BY created_at DESC"
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

func (r *PGRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE order_notifications SET is_read = TRUE WHERE id = $1`, id)
	return err
}

func (r *PGRepository) MarkAllReadForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE order_notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	return err
}
