package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/menu"
	"github.com/campusbites/order-service/internal/menu/dto"
	"github.com/campusbites/order-service/pkg/broker"
	"github.com/campusbites/order-service/pkg/logger"
)

// StockListener consumes order events and keeps tracked menu stock in sync:
// placed orders deduct, cancellations restock.
type StockListener struct {
	consumer *broker.KafkaConsumer
	uc       menu.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer *broker.KafkaConsumer, uc menu.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting stock Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stock Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID     string          `json:"id"`
	CafeID string          `json:"cafe_id"`
	UserID string          `json:"user_id"`
	Items  []dto.OrderLine `json:"items"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal order event", zap.Error(err))
		return
	}

	switch event.EventType {
	case "OrderPlaced":
		l.logger.Info("Processing OrderPlaced event", zap.String("order_id", event.Payload.ID))
		if err := l.uc.DeductForOrder(ctx, event.Payload.ID, event.Payload.CafeID, event.Payload.Items); err != nil {
			l.logger.Error("Failed to deduct stock for order",
				zap.String("order_id", event.Payload.ID),
				zap.Error(err),
			)
		}
	case "OrderCancelled":
		l.logger.Info("Processing OrderCancelled event", zap.String("order_id", event.Payload.ID))
		if err := l.uc.RestockForOrder(ctx, event.Payload.ID, event.Payload.CafeID, event.Payload.Items); err != nil {
			l.logger.Error("Failed to restock cancelled order",
				zap.String("order_id", event.Payload.ID),
				zap.Error(err),
			)
		}
	}
}
