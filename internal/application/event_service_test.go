package application

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

type fakeEventStore struct {
	events map[string]Event
	shares map[string]map[string]bool
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[string]Event), shares: make(map[string]map[string]bool)}
}

func (f *fakeEventStore) CreateEvent(_ context.Context, event Event) (Event, error) {
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeEventStore) GetEvent(_ context.Context, id string) (Event, error) {
	event, ok := f.events[id]
	if !ok {
		return Event{}, fmt.Errorf("event %s: %w", id, persistence.ErrNotFound)
	}
	return event, nil
}

func (f *fakeEventStore) UpdateEvent(_ context.Context, event Event) (Event, error) {
	if _, ok := f.events[event.ID]; !ok {
		return Event{}, fmt.Errorf("event %s: %w", event.ID, persistence.ErrNotFound)
	}
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeEventStore) ListEvents(_ context.Context, userID string, from, until *time.Time) ([]Event, error) {
	var results []Event
	for _, event := range f.events {
		if event.OwnerID != userID && !f.shares[event.ID][userID] {
			continue
		}
		if from != nil && event.Date.Before(*from) {
			continue
		}
		if until != nil && event.Date.After(*until) {
			continue
		}
		results = append(results, event)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].Date.Equal(results[j].Date) {
			return results[i].Date.Before(results[j].Date)
		}
		return results[i].StartTime < results[j].StartTime
	})
	return results, nil
}

func (f *fakeEventStore) ShareEvent(_ context.Context, eventID, friendID string) error {
	if _, ok := f.events[eventID]; !ok {
		return fmt.Errorf("event %s: %w", eventID, persistence.ErrNotFound)
	}
	if f.shares[eventID] == nil {
		f.shares[eventID] = make(map[string]bool)
	}
	f.shares[eventID][friendID] = true
	return nil
}

func (f *fakeEventStore) DeleteEvent(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, persistence.ErrNotFound)
	}
	delete(f.events, id)
	return nil
}

func newEventServiceForTest(store *fakeEventStore, friends FriendChecker, notifier *fakeNotifier) *EventService {
	counter := 0
	directory := newFakeUserDirectory(
		User{ID: "owner-1", Username: "alice"},
		User{ID: "friend-1", Username: "bob"},
	)
	return NewEventService(store, friends, directory, notifier,
		func() string { counter++; return fmt.Sprintf("event-%03d", counter) },
		func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
}

func TestCreateEventNormalizesDate(t *testing.T) {
	store := newFakeEventStore()
	service := newEventServiceForTest(store, allowAllFriends{}, &fakeNotifier{})

	event, err := service.CreateEvent(context.Background(), Principal{UserID: "owner-1"}, EventInput{
		Title:     "  Tournament Finals  ",
		Date:      time.Date(2025, 7, 4, 18, 45, 0, 0, time.UTC),
		StartTime: "19:00",
		EndTime:   "22:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "event-001", event.ID)
	assert.Equal(t, "Tournament Finals", event.Title)
	assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), event.Date)
}

func TestCreateEventValidation(t *testing.T) {
	service := newEventServiceForTest(newFakeEventStore(), allowAllFriends{}, &fakeNotifier{})
	reminder := "25:99"

	cases := []struct {
		name  string
		input EventInput
		field string
	}{
		{name: "missing title", input: EventInput{Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00"}, field: "title"},
		{name: "missing date", input: EventInput{Title: "Finals", StartTime: "19:00", EndTime: "20:00"}, field: "date"},
		{name: "bad start time", input: EventInput{Title: "Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "7pm", EndTime: "20:00"}, field: "start_time"},
		{name: "end before start", input: EventInput{Title: "Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "20:00", EndTime: "19:00"}, field: "end_time"},
		{name: "bad reminder", input: EventInput{Title: "Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00", ReminderTime: &reminder}, field: "reminder_time"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateEvent(context.Background(), Principal{UserID: "owner-1"}, tc.input)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.FieldErrors, tc.field)
		})
	}
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	store := newFakeEventStore()
	service := newEventServiceForTest(store, allowAllFriends{}, &fakeNotifier{})
	store.events["event-1"] = Event{ID: "event-1", OwnerID: "owner-1", Title: "Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00"}

	_, err := service.UpdateEvent(context.Background(), Principal{UserID: "intruder"}, "event-1", EventInput{
		Title: "Hijacked", Date: time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Finals", store.events["event-1"].Title)
}

func TestShareEventNotifiesFriend(t *testing.T) {
	store := newFakeEventStore()
	notifier := &fakeNotifier{}
	service := newEventServiceForTest(store, allowAllFriends{}, notifier)
	store.events["event-1"] = Event{ID: "event-1", OwnerID: "owner-1", Title: "Tournament Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00"}

	require.NoError(t, service.ShareEvent(context.Background(), Principal{UserID: "owner-1"}, "event-1", "friend-1"))

	assert.True(t, store.shares["event-1"]["friend-1"])
	require.Len(t, notifier.delivered, 1)
	assert.Equal(t, "friend-1", notifier.delivered[0].UserID)
	assert.Equal(t, NotificationKindEvent, notifier.delivered[0].Kind)
	assert.Equal(t, "alice shared the event Tournament Finals with you", notifier.delivered[0].Message)
}

func TestShareEventRequiresFriendship(t *testing.T) {
	store := newFakeEventStore()
	directory := newFakeUserDirectory(User{ID: "owner-1", Username: "alice"})
	graph := newFakeFriendGraph(directory)
	service := newEventServiceForTest(store, graph, &fakeNotifier{})
	store.events["event-1"] = Event{ID: "event-1", OwnerID: "owner-1", Title: "Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00"}

	err := service.ShareEvent(context.Background(), Principal{UserID: "owner-1"}, "event-1", "stranger")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors["friend_id"], "friends")
}

func TestGetEventSharedVisibility(t *testing.T) {
	store := newFakeEventStore()
	service := newEventServiceForTest(store, allowAllFriends{}, &fakeNotifier{})
	store.events["event-1"] = Event{ID: "event-1", OwnerID: "owner-1", Title: "Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00"}

	_, err := service.GetEvent(context.Background(), Principal{UserID: "friend-1"}, "event-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, service.ShareEvent(context.Background(), Principal{UserID: "owner-1"}, "event-1", "friend-1"))

	event, err := service.GetEvent(context.Background(), Principal{UserID: "friend-1"}, "event-1")
	require.NoError(t, err)
	assert.Equal(t, "event-1", event.ID)
}

func TestListEventsWindow(t *testing.T) {
	store := newFakeEventStore()
	service := newEventServiceForTest(store, allowAllFriends{}, &fakeNotifier{})
	for i, day := range []int{1, 10, 20} {
		id := fmt.Sprintf("event-%d", i+1)
		store.events[id] = Event{ID: id, OwnerID: "owner-1", Title: id, Date: time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00"}
	}

	from := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	events, err := service.ListEvents(context.Background(), Principal{UserID: "owner-1"}, &from, &until)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "event-2", events[0].ID)

	_, err = service.ListEvents(context.Background(), Principal{UserID: "owner-1"}, &until, &from)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDeleteEventOwnerOnly(t *testing.T) {
	store := newFakeEventStore()
	service := newEventServiceForTest(store, allowAllFriends{}, &fakeNotifier{})
	store.events["event-1"] = Event{ID: "event-1", OwnerID: "owner-1", Title: "Finals", Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "19:00", EndTime: "20:00"}

	assert.ErrorIs(t, service.DeleteEvent(context.Background(), Principal{UserID: "intruder"}, "event-1"), ErrNotFound)

	require.NoError(t, service.DeleteEvent(context.Background(), Principal{UserID: "owner-1"}, "event-1"))
	assert.Empty(t, store.events)
}
