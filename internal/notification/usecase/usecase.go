package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/notification"
	"github.com/campusbites/order-service/internal/notification/dto"
	"github.com/campusbites/order-service/pkg/cache"
	"github.com/campusbites/order-service/pkg/logger"
)

type notificationUseCase struct {
	repo   notification.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewNotificationUseCase(repo notification.Repository, cache *cache.RedisClient, log logger.ZapLogger) notification.UseCase {
	return &notificationUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *notificationUseCase) NotifyUser(ctx context.Context, userID string, orderID *string, notifType, message string) error {
	n := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    &userID,
		OrderID:   orderID,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
	}
	return uc.deliver(ctx, n, notification.UserChannel(userID))
}

func (uc *notificationUseCase) NotifyCafe(ctx context.Context, cafeID string, orderID *string, notifType, message string) error {
	n := &model.Notification{
		ID:        uuid.New().String(),
		CafeID:    &cafeID,
		OrderID:   orderID,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
	}
	return uc.deliver(ctx, n, notification.CafeChannel(cafeID))
}

func (uc *notificationUseCase) deliver(ctx context.Context, n *model.Notification, channel string) error {
	if err := uc.repo.Create(ctx, n); err != nil {
		return err
	}

	// Publish is best-effort; subscribers that miss it still see the row.
	payload, err := json.Marshal(n)
	if err == nil {
		if err := uc.cache.Client.Publish(ctx, channel, payload).Err(); err != nil {
			uc.logger.Warn("failed to publish notification",
				zap.String("channel", channel),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (uc *notificationUseCase) List(ctx context.Context, filters *dto.NotificationFilters) ([]model.Notification, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *notificationUseCase) MarkRead(ctx context.Context, id string) error {
	return uc.repo.MarkRead(ctx, id)
}

func (uc *notificationUseCase) MarkAllRead(ctx context.Context, userID string) error {
	return uc.repo.MarkAllReadForUser(ctx, userID)
}

func (uc *notificationUseCase) Subscribe(ctx context.Context, channel string) (<-chan string, func(), error) {
	pubsub := uc.cache.Client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { pubsub.Close() }, nil
}
