package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusbites/order-service/internal/model"
)

func TestOrderNumberFromCounter(t *testing.T) {
	f := newFixture(t)
	f.seq.next = 41 // next call hands out 42

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	number := f.uc.orderNumber(context.Background(), f.cafes.cafe, "user-1", model.ChannelOnline, now)

	assert.Equal(t, "ORD-20260314-chai-point-0042", number)
}

func TestOrderNumberFallbackWhenCounterDown(t *testing.T) {
	f := newFixture(t)
	f.seq.err = errors.New("redis unreachable")

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	number := f.uc.orderNumber(context.Background(), f.cafes.cafe, "user-abcd1234", model.ChannelOnline, now)

	assert.True(t, strings.HasPrefix(number, "ORD-"), number)
	assert.True(t, strings.HasSuffix(number, "-1234"), "fallback carries the user suffix: %s", number)
	assert.NotContains(t, number, "chai-point")
}

func TestOrderNumberOfflinePrefix(t *testing.T) {
	f := newFixture(t)

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	number := f.uc.orderNumber(context.Background(), f.cafes.cafe, "user-1", model.ChannelOffline, now)

	assert.Equal(t, "OFFLINE-ORD-20260314-chai-point-0001", number)
}

func TestOrderNumbersAreSequentialPerCall(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	first := f.uc.orderNumber(context.Background(), f.cafes.cafe, "user-1", model.ChannelOnline, now)
	second := f.uc.orderNumber(context.Background(), f.cafes.cafe, "user-1", model.ChannelOnline, now)

	assert.Equal(t, "ORD-20260314-chai-point-0001", first)
	assert.Equal(t, "ORD-20260314-chai-point-0002", second)
}
