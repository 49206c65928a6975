package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/model"
)

// Sequencer hands out monotonically increasing counters. The Redis client
// implements it; tests substitute an in-memory one.
type Sequencer interface {
	NextSequence(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// orderNumber builds a human-readable receipt number from an atomic per-cafe
// per-day counter: ORD-YYYYMMDD-<cafe-slug>-NNNN. Counter keys expire two
// days out so stale days clean themselves up.
//
// When the counter is unreachable the order still has to go through, so we
// fall back to a collision-resistant legacy shape built from the clock and a
// random suffix. Offline counter orders carry an OFFLINE- prefix either way.
func (uc *orderUseCase) orderNumber(ctx context.Context, cafe *model.Cafe, userID string, channel model.OrderChannel, now time.Time) string {
	day := now.Format("20060102")

	var number string
	key := fmt.Sprintf("orders:seq:%s:%s", cafe.ID, day)
	seq, err := uc.seq.NextSequence(ctx, key, 48*time.Hour)
	if err != nil {
		uc.logger.Warn("order number counter unavailable, using fallback",
			zap.String("cafe_id", cafe.ID), zap.Error(err))
		number = legacyOrderNumber(userID, now)
	} else {
		number = fmt.Sprintf("ORD-%s-%s-%04d", day, cafe.Slug, seq)
	}

	if channel == model.ChannelOffline {
		number = "OFFLINE-" + number
	}
	return number
}

func legacyOrderNumber(userID string, now time.Time) string {
	suffix := userID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	entropy := strconv.FormatInt(rand.Int63n(36*36*36*36), 36)
	return fmt.Sprintf("ORD-%d-%s-%s", now.UnixMilli(), entropy, suffix)
}
