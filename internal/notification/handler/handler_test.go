package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/notification"
	"github.com/campusbites/order-service/internal/notification/dto"
	"github.com/campusbites/order-service/pkg/logger"
)

type fakeUseCase struct {
	listed     *dto.NotificationFilters
	subscribed string
}

func (f *fakeUseCase) NotifyUser(context.Context, string, *string, string, string) error { return nil }
func (f *fakeUseCase) NotifyCafe(context.Context, string, *string, string, string) error { return nil }

func (f *fakeUseCase) List(_ context.Context, filters *dto.NotificationFilters) ([]model.Notification, int, error) {
	f.listed = filters
	return []model.Notification{}, 0, nil
}

func (f *fakeUseCase) MarkRead(context.Context, string) error    { return nil }
func (f *fakeUseCase) MarkAllRead(context.Context, string) error { return nil }

func (f *fakeUseCase) Subscribe(_ context.Context, channel string) (<-chan string, func(), error) {
	f.subscribed = channel
	msgs := make(chan string)
	close(msgs)
	return msgs, func() {}, nil
}

type fakeAuthz struct {
	allowed bool
}

func (f *fakeAuthz) CanManage(context.Context, string, string) (bool, error) {
	return f.allowed, nil
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), userID, model.UserTypeStudent))
}

func TestListCafeChannelRequiresManager(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewNotificationHandler(uc, &fakeAuthz{allowed: false}, logger.NewNop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/notifications?cafe_id=cafe-1", nil), "student-9")
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, uc.listed)
}

func TestListCafeChannelAllowsStaff(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewNotificationHandler(uc, &fakeAuthz{allowed: true}, logger.NewNop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/notifications?cafe_id=cafe-1", nil), "staff-7")
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.listed)
	assert.Equal(t, "cafe-1", uc.listed.CafeID)
	assert.Empty(t, uc.listed.UserID, "dashboard polls the cafe channel, not the staffer's")
}

func TestListDefaultsToOwnInbox(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewNotificationHandler(uc, &fakeAuthz{allowed: false}, logger.NewNop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/notifications", nil), "student-9")
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.listed)
	assert.Equal(t, "student-9", uc.listed.UserID)
}

func TestStreamCafeChannelRequiresManager(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewNotificationHandler(uc, &fakeAuthz{allowed: false}, logger.NewNop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/notifications/stream?cafe_id=cafe-1", nil), "student-9")
	rec := httptest.NewRecorder()

	h.Stream(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, uc.subscribed)
}

func TestStreamCafeChannelAllowsStaff(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewNotificationHandler(uc, &fakeAuthz{allowed: true}, logger.NewNop())

	req := asUser(httptest.NewRequest(http.MethodGet, "/notifications/stream?cafe_id=cafe-1", nil), "staff-7")
	rec := httptest.NewRecorder()

	h.Stream(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, notification.CafeChannel("cafe-1"), uc.subscribed)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}
