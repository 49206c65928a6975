package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/menu"
	"github.com/campusbites/order-service/internal/menu/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/pkg/cache"
	"github.com/campusbites/order-service/pkg/logger"
	"github.com/campusbites/order-service/pkg/search"
)

const menuIndex = "menu_items"

type menuUseCase struct {
	repo   menu.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewMenuUseCase(repo menu.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) menu.UseCase {
	return &menuUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *menuUseCase) CreateItem(ctx context.Context, input *dto.CreateMenuItemInput) (*model.MenuItem, error) {
	if input.Price <= 0 {
		return nil, menu.ErrInvalidPrice
	}

	id := uuid.New().String()
	now := time.Now()

	description := &input.Description
	if input.Description == "" {
		description = nil
	}
	imageURL := &input.ImageURL
	if input.ImageURL == "" {
		imageURL = nil
	}

	item := &model.MenuItem{
		BaseModel:          model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		CafeID:             input.CafeID,
		Name:               input.Name,
		Description:        description,
		Category:           input.Category,
		Price:              input.Price,
		ImageURL:           imageURL,
		IsAvailable:        true,
		Vegetarian:         input.Vegetarian,
		DailyStockQuantity: input.DailyStockQuantity,
	}
	if input.DailyStockQuantity != nil {
		current := *input.DailyStockQuantity
		item.CurrentStockQuantity = &current
	}

	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	go uc.invalidateMenuCache(context.Background(), input.CafeID)
	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

func (uc *menuUseCase) syncToElastic(ctx context.Context, item *model.MenuItem) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"cafe_id": { "type": "keyword" },
				"name": { "type": "text" },
				"description": { "type": "text" },
				"category": { "type": "keyword" },
				"price": { "type": "double" },
				"vegetarian": { "type": "boolean" },
				"is_available": { "type": "boolean" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, menuIndex, mapping)

	if err := uc.es.Index(ctx, menuIndex, item.ID, item); err != nil {
		uc.logger.Error("failed to index menu item", zap.Error(err))
	}
}

func (uc *menuUseCase) GetItem(ctx context.Context, id string) (*model.MenuItem, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *menuUseCase) ListItems(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error) {
	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result struct {
				Items []model.MenuItem
				Count int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Items, result.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []map[string]interface{}{
						{
							"query_string": map[string]interface{}{
								"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
								"fields": []string{"name^3", "category", "description"},
							},
						},
						{
							"term": map[string]interface{}{
								"cafe_id": filters.CafeID,
							},
						},
					},
				},
			},
			"from": (filters.Page - 1) * filters.PageSize,
		}
		if filters.PageSize > 0 {
			q["size"] = filters.PageSize
		}

		res, err := uc.es.Search(ctx, menuIndex, q)
		if err == nil {
			var esItems []model.MenuItem
			for _, hit := range res.Hits.Hits {
				var item model.MenuItem
				if err := json.Unmarshal(hit.Source, &item); err == nil {
					esItems = append(esItems, item)
				}
			}
			return esItems, res.Hits.Total.Value, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		cacheData := struct {
			Items []model.MenuItem
			Count int
		}{
			Items: items,
			Count: count,
		}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return items, count, nil
}

func (uc *menuUseCase) generateCacheKey(filters *dto.MenuFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("menu:list:%s:%x", filters.CafeID, md5.Sum(data)), nil
}

func (uc *menuUseCase) invalidateMenuCache(ctx context.Context, cafeID string) {
	pattern := fmt.Sprintf("menu:list:%s:*", cafeID)
	keys, err := uc.cache.Client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *menuUseCase) UpdateItem(ctx context.Context, input *dto.UpdateMenuItemInput) (*model.MenuItem, error) {
	if input.Price <= 0 {
		return nil, menu.ErrInvalidPrice
	}

	item, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, menu.ErrItemNotFound
	}

	item.Name = input.Name
	item.Category = input.Category
	item.Price = input.Price
	item.IsAvailable = input.IsAvailable
	item.OutOfStock = input.OutOfStock
	item.Vegetarian = input.Vegetarian
	if input.Description != "" {
		desc := input.Description
		item.Description = &desc
	} else {
		item.Description = nil
	}
	if input.ImageURL != "" {
		img := input.ImageURL
		item.ImageURL = &img
	} else {
		item.ImageURL = nil
	}

	// Re-tracking an untracked item starts its current stock at the daily cap;
	// untracking clears both.
	if input.DailyStockQuantity != nil && item.DailyStockQuantity == nil {
		current := *input.DailyStockQuantity
		item.CurrentStockQuantity = &current
	}
	if input.DailyStockQuantity == nil {
		item.CurrentStockQuantity = nil
	}
	item.DailyStockQuantity = input.DailyStockQuantity

	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	go uc.invalidateMenuCache(context.Background(), item.CafeID)
	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

func (uc *menuUseCase) DeleteItem(ctx context.Context, id string) error {
	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil // Already deleted
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	go uc.invalidateMenuCache(context.Background(), item.CafeID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), menuIndex, id); err != nil {
				uc.logger.Error("failed to delete menu item from ES", zap.Error(err))
			}
		}()
	}

	return nil
}

func (uc *menuUseCase) BulkUpdatePrices(ctx context.Context, input *dto.BulkPriceInput) (int64, error) {
	if input.Filter.CafeID == "" {
		return 0, menu.ErrInvalidBulkOp
	}
	if input.Mode == dto.PriceModePercentage && input.Value <= -100 {
		return 0, menu.ErrInvalidBulkOp
	}
	if input.Filter.Scope == "category" && input.Filter.Category == "" {
		return 0, menu.ErrInvalidBulkOp
	}

	affected, err := uc.repo.BulkUpdatePrice(ctx, &input.Filter, input.Mode, input.Value)
	if err != nil {
		return 0, err
	}

	uc.logger.Info("bulk price update",
		zap.String("cafe_id", input.Filter.CafeID),
		zap.String("scope", input.Filter.Scope),
		zap.String("mode", input.Mode),
		zap.Float64("value", input.Value),
		zap.Int64("affected", affected),
	)

	go uc.invalidateMenuCache(context.Background(), input.Filter.CafeID)
	go uc.reindexCafe(context.Background(), input.Filter.CafeID)

	return affected, nil
}

func (uc *menuUseCase) BulkSetAvailability(ctx context.Context, input *dto.BulkAvailabilityInput) (int64, error) {
	if input.Filter.CafeID == "" {
		return 0, menu.ErrInvalidBulkOp
	}
	if input.Filter.Scope == "category" && input.Filter.Category == "" {
		return 0, menu.ErrInvalidBulkOp
	}

	affected, err := uc.repo.BulkSetAvailability(ctx, &input.Filter, input.Available)
	if err != nil {
		return 0, err
	}

	go uc.invalidateMenuCache(context.Background(), input.Filter.CafeID)
	go uc.reindexCafe(context.Background(), input.Filter.CafeID)

	return affected, nil
}

// reindexCafe pushes the cafe's rows back into ES after a bulk edit changed
// them outside the single-item paths.
func (uc *menuUseCase) reindexCafe(ctx context.Context, cafeID string) {
	if uc.es == nil {
		return
	}
	items, _, err := uc.repo.FindAll(ctx, &dto.MenuFilters{CafeID: cafeID})
	if err != nil {
		uc.logger.Error("failed to load cafe menu for reindex", zap.Error(err))
		return
	}
	for i := range items {
		uc.syncToElastic(ctx, &items[i])
	}
}

func (uc *menuUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.MenuItem, error) {
	referenceType := input.ReferenceType
	if referenceType == "" {
		referenceType = "manual_adjustment"
	}
	return uc.adjustStock(ctx, input.MenuItemID, input.QuantityChange, referenceType, input.ReferenceID, input.Reason, input.UserID)
}

func (uc *menuUseCase) adjustStock(ctx context.Context, menuItemID string, change int, refType, refID, notes, userID string) (*model.MenuItem, error) {
	lockKey := fmt.Sprintf("lock:stock:%s", menuItemID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire stock lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, errors.New("system busy, please try again later (lock)")
	}
	defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)

	item, err := uc.repo.FindByID(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, menu.ErrItemNotFound
	}
	if item.CurrentStockQuantity == nil {
		// Untracked item, nothing to adjust.
		return item, nil
	}

	now := time.Now()
	before := *item.CurrentStockQuantity
	after := before + change
	// Negative stock ("oversold") is tolerated and recorded, not rejected.
	item.CurrentStockQuantity = &after
	item.OutOfStock = after <= 0
	item.UpdatedAt = now

	var refIDPtr *string
	if refID != "" {
		refIDPtr = &refID
	}
	var refTypePtr *string
	if refType != "" {
		refTypePtr = &refType
	}
	var createdBy *string
	if userID != "" {
		createdBy = &userID
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		CafeID:         item.CafeID,
		MenuItemID:     item.ID,
		QuantityChange: change,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceType:  refTypePtr,
		ReferenceID:    refIDPtr,
		Notes:          notes,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}

	if err := uc.repo.AdjustStockWithMovement(ctx, item, movement); err != nil {
		return nil, err
	}

	if item.Oversold() {
		uc.logger.Warn("menu item oversold",
			zap.String("menu_item_id", item.ID),
			zap.Int("current_stock", after),
		)
	}

	go uc.invalidateMenuCache(context.Background(), item.CafeID)

	return item, nil
}

func (uc *menuUseCase) DeductForOrder(ctx context.Context, orderID, cafeID string, lines []dto.OrderLine) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		_, err := uc.adjustStock(ctx, line.MenuItemID, -line.Quantity, "sale", orderID, "Order sale", "system")
		if err != nil {
			uc.logger.Error("failed to deduct stock for order item",
				zap.String("order_id", orderID),
				zap.String("menu_item_id", line.MenuItemID),
				zap.Error(err),
			)
			// Keep going; remaining lines should still be deducted.
		}
	}
	return nil
}

func (uc *menuUseCase) RestockForOrder(ctx context.Context, orderID, cafeID string, lines []dto.OrderLine) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		_, err := uc.adjustStock(ctx, line.MenuItemID, line.Quantity, "cancellation", orderID, "Order cancelled", "system")
		if err != nil {
			uc.logger.Error("failed to restock cancelled order item",
				zap.String("order_id", orderID),
				zap.String("menu_item_id", line.MenuItemID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (uc *menuUseCase) ResetDailyStock(ctx context.Context, cafeID string) (int64, error) {
	affected, err := uc.repo.ResetDailyStock(ctx, cafeID)
	if err != nil {
		return 0, err
	}

	uc.logger.Info("daily stock reset",
		zap.String("cafe_id", cafeID),
		zap.Int64("items", affected),
	)

	if cafeID != "" {
		go uc.invalidateMenuCache(context.Background(), cafeID)
	}

	return affected, nil
}

func (uc *menuUseCase) RunDailyReset(ctx context.Context, hour int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
			if _, err := uc.ResetDailyStock(ctx, ""); err != nil {
				uc.logger.Error("scheduled stock reset failed", zap.Error(err))
			}
		}
	}
}

func (uc *menuUseCase) ListMovements(ctx context.Context, cafeID, menuItemID string, page, pageSize int) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, cafeID, menuItemID, page, pageSize)
}
