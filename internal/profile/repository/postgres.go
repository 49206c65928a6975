package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/campusbites/order-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM profiles WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Upsert(ctx context.Context, p *model.Profile) error {
	query := `
        INSERT INTO profiles (
            id, full_name, email, phone, block, user_type,
            loyalty_points, total_orders, total_spent, created_at, updated_at
        )
        VALUES (
            :id, :full_name, :email, :phone, :block, :user_type,
            :loyalty_points, :total_orders, :total_spent, :created_at, :updated_at
        )
        ON CONFLICT (id) DO UPDATE SET
            full_name = EXCLUDED.full_name,
            email = EXCLUDED.email,
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Update(ctx context.Context, p *model.Profile) error {
	query := `
        UPDATE profiles
        SET full_name = :full_name,
            phone = :phone,
            block = :block,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}
