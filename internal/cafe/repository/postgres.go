package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campusbites/order-service/internal/cafe/dto"
	"github.com/campusbites/order-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, cafe *model.Cafe) error {
	query := `
        INSERT INTO cafes (
            id, owner_id, name, slug, description, location, image_url,
            accepting_orders, whatsapp_number, whatsapp_enabled,
            average_rating, total_ratings, created_at, updated_at
        )
        VALUES (
            :id, :owner_id, :name, :slug, :description, :location, :image_url,
            :accepting_orders, :whatsapp_number, :whatsapp_enabled,
            :average_rating, :total_ratings, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, cafe)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Cafe, error) {
	var cafe model.Cafe
	err := r.DB.GetContext(ctx, &cafe, `SELECT * FROM cafes WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cafe, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CafeFilters) ([]model.Cafe, int, error) {
	var cafes []model.Cafe
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.AcceptingOnly {
		conditions = append(conditions, "accepting_orders = TRUE")
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR location ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM cafes" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	orderBy := "average_rating DESC, total_ratings DESC, name"
	switch f.OrderBy {
	case "name":
		orderBy = "name"
	case "created_at":
		orderBy = "created_at DESC"
	}

	query := fmt.Sprintf("SELECT * FROM cafes%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &cafes, args)
	return cafes, count, err
}

func (r *PGRepository) Update(ctx context.Context, cafe *model.Cafe) error {
	query := `
        UPDATE cafes
        SET name = :name,
            description = :description,
            location = :location,
            image_url = :image_url,
            whatsapp_number = :whatsapp_number,
            whatsapp_enabled = :whatsapp_enabled,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, cafe)
	return err
}

func (r *PGRepository) SetAcceptingOrders(ctx context.Context, id string, accepting bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE cafes SET accepting_orders = $1, updated_at = NOW() WHERE id = $2`, accepting, id)
	return err
}

func (r *PGRepository) HasStaff(ctx context.Context, cafeID, userID string) (bool, error) {
	var count int
	query := `
        SELECT count(*) FROM cafes c
        LEFT JOIN cafe_staff s ON s.cafe_id = c.id AND s.user_id = $2
        WHERE c.id = $1 AND (c.owner_id = $2 OR s.user_id IS NOT NULL)
    `
	if err := r.DB.GetContext(ctx, &count, query, cafeID, userID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PGRepository) AddStaff(ctx context.Context, staff *model.CafeStaff) error {
	query := `
        INSERT INTO cafe_staff (id, cafe_id, user_id, role, created_at)
        VALUES (:id, :cafe_id, :user_id, :role, :created_at)
        ON CONFLICT (cafe_id, user_id) DO NOTHING
    `
	_, err := r.DB.NamedExecContext(ctx, query, staff)
	return err
}

func (r *PGRepository) RemoveStaff(ctx context.Context, cafeID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM cafe_staff WHERE cafe_id = $1 AND user_id = $2`, cafeID, userID)
	return err
}

func (r *PGRepository) ListStaff(ctx context.Context, cafeID string) ([]model.CafeStaff, error) {
	var staff []model.CafeStaff
	err := r.DB.SelectContext(ctx, &staff,
		`SELECT * FROM cafe_staff WHERE cafe_id = $1 ORDER BY created_at`, cafeID)
	return staff, err
}
