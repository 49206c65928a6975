package notification

import (
	"context"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/notification/dto"
)

type Repository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindAll(ctx context.Context, filters *dto.NotificationFilters) ([]model.Notification, int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllReadForUser(ctx context.Context, userID string) error
}
