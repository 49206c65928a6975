package notification

import (
	"context"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/notification/dto"
)

// UseCase persists notifications and fans them out over Redis pub/sub; the
// SSE stream endpoint bridges that subscription to connected clients.
type UseCase interface {
	NotifyUser(ctx context.Context, userID string, orderID *string, notifType, message string) error
	NotifyCafe(ctx context.Context, cafeID string, orderID *string, notifType, message string) error
	List(ctx context.Context, filters *dto.NotificationFilters) ([]model.Notification, int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error

	// Subscribe returns a stream of raw notification payloads published on
	// the channel, plus a cleanup func.
	Subscribe(ctx context.Context, channel string) (<-chan string, func(), error)
}

func UserChannel(userID string) string { return "orders:user:" + userID }
func CafeChannel(cafeID string) string { return "orders:cafe:" + cafeID }
