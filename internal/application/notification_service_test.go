package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

type fakeNotificationStore struct {
	created     [][]NewNotification
	inboxes     map[string][]Notification
	markedRead  []string
	markedAll   []string
	createError error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{inboxes: make(map[string][]Notification)}
}

func (f *fakeNotificationStore) CreateNotifications(_ context.Context, notifications []NewNotification) error {
	if f.createError != nil {
		return f.createError
	}
	f.created = append(f.created, notifications)
	return nil
}

func (f *fakeNotificationStore) ListNotifications(_ context.Context, userID string) ([]Notification, error) {
	return f.inboxes[userID], nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID, notificationID string) error {
	for _, notification := range f.inboxes[userID] {
		if notification.ID == notificationID {
			f.markedRead = append(f.markedRead, notificationID)
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", notificationID, persistence.ErrNotFound)
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID string) error {
	f.markedAll = append(f.markedAll, userID)
	return nil
}

func newNotificationServiceForTest(store *fakeNotificationStore) *NotificationService {
	counter := 0
	return NewNotificationService(store,
		func() string { counter++; return fmt.Sprintf("notification-%03d", counter) },
		func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
}

func TestNotifyBatchesRecipients(t *testing.T) {
	store := newFakeNotificationStore()
	service := newNotificationServiceForTest(store)

	err := service.Notify(context.Background(), []string{"user-1", " user-2 ", "user-1", ""}, NotificationKindInvite, "  you are invited  ")
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	batch := store.created[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "notification-001", batch[0].ID)
	assert.Equal(t, "user-1", batch[0].UserID)
	assert.Equal(t, "notification-002", batch[1].ID)
	assert.Equal(t, "user-2", batch[1].UserID)
	for _, notification := range batch {
		assert.Equal(t, NotificationKindInvite, notification.Kind)
		assert.Equal(t, "you are invited", notification.Message)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), notification.CreatedAt)
	}
}

func TestNotifySkipsEmptyDeliveries(t *testing.T) {
	store := newFakeNotificationStore()
	service := newNotificationServiceForTest(store)

	require.NoError(t, service.Notify(context.Background(), []string{"user-1"}, NotificationKindFriend, "   "))
	require.NoError(t, service.Notify(context.Background(), nil, NotificationKindFriend, "hello"))
	require.NoError(t, service.Notify(context.Background(), []string{"", "  "}, NotificationKindFriend, "hello"))

	assert.Empty(t, store.created)
}

func TestNotifyReturnsStoreError(t *testing.T) {
	store := newFakeNotificationStore()
	store.createError = assert.AnError
	service := newNotificationServiceForTest(store)

	err := service.Notify(context.Background(), []string{"user-1"}, NotificationKindEvent, "hello")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestListNotificationsRequiresPrincipal(t *testing.T) {
	store := newFakeNotificationStore()
	store.inboxes["user-1"] = []Notification{{ID: "notification-1", Kind: NotificationKindInvite, Message: "you are invited"}}
	service := newNotificationServiceForTest(store)

	_, err := service.List(context.Background(), Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	notifications, err := service.List(context.Background(), Principal{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "notification-1", notifications[0].ID)
}

func TestMarkReadMapsMissingNotification(t *testing.T) {
	store := newFakeNotificationStore()
	store.inboxes["user-1"] = []Notification{{ID: "notification-1"}}
	service := newNotificationServiceForTest(store)

	assert.ErrorIs(t, service.MarkRead(context.Background(), Principal{}, "notification-1"), ErrUnauthorized)
	assert.ErrorIs(t, service.MarkRead(context.Background(), Principal{UserID: "user-1"}, "notification-9"), ErrNotFound)

	require.NoError(t, service.MarkRead(context.Background(), Principal{UserID: "user-1"}, " notification-1 "))
	assert.Equal(t, []string{"notification-1"}, store.markedRead)
}

func TestMarkAllRead(t *testing.T) {
	store := newFakeNotificationStore()
	service := newNotificationServiceForTest(store)

	assert.ErrorIs(t, service.MarkAllRead(context.Background(), Principal{}), ErrUnauthorized)

	require.NoError(t, service.MarkAllRead(context.Background(), Principal{UserID: "user-1"}))
	assert.Equal(t, []string{"user-1"}, store.markedAll)
}
