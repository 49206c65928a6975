package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campusbites/order-service/internal/menu/dto"
	"github.com/campusbites/order-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, item *model.MenuItem) error {
	query := `
        INSERT INTO menu_items (
            id, cafe_id, name, description, category, price, image_url,
            is_available, out_of_stock, vegetarian,
            daily_stock_quantity, current_stock_quantity, created_at, updated_at
        )
        VALUES (
            :id, :cafe_id, :name, :description, :category, :price, :image_url,
            :is_available, :out_of_stock, :vegetarian,
            :daily_stock_quantity, :current_stock_quantity, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM menu_items WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.MenuFilters) ([]model.MenuItem, int, error) {
	var items []model.MenuItem
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.CafeID != "" {
		conditions = append(conditions, "cafe_id = :cafe_id")
		args["cafe_id"] = f.CafeID
	}
	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if f.Vegetarian != nil {
		conditions = append(conditions, "vegetarian = :vegetarian")
		args["vegetarian"] = *f.Vegetarian
	}
	if f.AvailableOnly {
		conditions = append(conditions, "is_available = TRUE AND out_of_stock = FALSE")
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM menu_items" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	orderBy := "category, name"
	if f.SortBy != "" {
		// Whitelist sortable fields
		switch f.SortBy {
		case "name":
			orderBy = "name"
		case "price":
			orderBy = "price"
		case "created_at":
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "desc" {
			orderBy += " DESC"
		} else {
			orderBy += " ASC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM menu_items%s ORDER BY %s", whereClause, orderBy)
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
	if err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (r *PGRepository) Update(ctx context.Context, item *model.MenuItem) error {
	query := `
        UPDATE menu_items
        SET name = :name,
            description = :description,
            category = :category,
            price = :price,
            image_url = :image_url,
            is_available = :is_available,
            out_of_stock = :out_of_stock,
            vegetarian = :vegetarian,
            daily_stock_quantity = :daily_stock_quantity,
            current_stock_quantity = :current_stock_quantity,
            updated_at = :updated_at
        WHERE id = :id AND cafe_id = :cafe_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	return err
}

func (r *PGRepository) BatchGet(ctx context.Context, cafeID string, ids []string) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return []model.MenuItem{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM menu_items WHERE cafe_id = ? AND id IN (?)`, cafeID, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var items []model.MenuItem
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func scopeCondition(f *dto.BulkFilter, args []interface{}) (string, []interface{}, error) {
	switch f.Scope {
	case "all", "":
		return "", args, nil
	case "category":
		args = append(args, f.Category)
		return fmt.Sprintf(" AND category = $%d", len(args)), args, nil
	case "veg":
		return " AND vegetarian = TRUE", args, nil
	case "non_veg":
		return " AND vegetarian = FALSE", args, nil
	}
	return "", nil, fmt.Errorf("unknown bulk scope %q", f.Scope)
}

func (r *PGRepository) BulkUpdatePrice(ctx context.Context, filter *dto.BulkFilter, mode string, value float64) (int64, error) {
	var expr string
	switch mode {
	case dto.PriceModePercentage:
		// new = max(1, round(old * (1 + pct/100), 2))
		expr = "GREATEST(1, ROUND((price * (1 + $1 / 100.0))::numeric, 2))"
	case dto.PriceModeFixed:
		// new = max(1, round(old + amount, 2))
		expr = "GREATEST(1, ROUND((price + $1)::numeric, 2))"
	default:
		return 0, fmt.Errorf("unknown price mode %q", mode)
	}

	args := []interface{}{value, filter.CafeID}
	query := fmt.Sprintf("UPDATE menu_items SET price = %s, updated_at = NOW() WHERE cafe_id = $2", expr)

	scope, args, err := scopeCondition(filter, args)
	if err != nil {
		return 0, err
	}
	query += scope

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepository) BulkSetAvailability(ctx context.Context, filter *dto.BulkFilter, available bool) (int64, error) {
	args := []interface{}{available, filter.CafeID}
	query := "UPDATE menu_items SET is_available = $1, updated_at = NOW() WHERE cafe_id = $2"

	scope, args, err := scopeCondition(filter, args)
	if err != nil {
		return 0, err
	}
	query += scope

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, item *model.MenuItem, movement *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
        UPDATE menu_items
        SET current_stock_quantity = :current_stock_quantity,
            out_of_stock = :out_of_stock,
            updated_at = :updated_at
        WHERE id = :id
    `, item)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO stock_movements (
            id, cafe_id, menu_item_id, quantity_change, quantity_before,
            quantity_after, reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :cafe_id, :menu_item_id, :quantity_change, :quantity_before,
            :quantity_after, :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `, movement)
	if err != nil {
		return fmt.Errorf("failed to log stock movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ResetDailyStock(ctx context.Context, cafeID string) (int64, error) {
	query := `
        UPDATE menu_items
        SET current_stock_quantity = daily_stock_quantity,
            out_of_stock = (daily_stock_quantity <= 0),
            updated_at = NOW()
        WHERE daily_stock_quantity IS NOT NULL
    `
	args := []interface{}{}
	if cafeID != "" {
		query += " AND cafe_id = $1"
		args = append(args, cafeID)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepository) ListMovements(ctx context.Context, cafeID, menuItemID string, page, pageSize int) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if cafeID != "" {
		conditions = append(conditions, "cafe_id = :cafe_id")
		args["cafe_id"] = cafeID
	}
	if menuItemID != "" {
		conditions = append(conditions, "menu_item_id = :menu_item_id")
		args["menu_item_id"] = menuItemID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if pageSize > 0 {
		offset := (page - 1) * pageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}
