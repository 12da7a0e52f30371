package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gameplan-scheduler/internal/application"
)

type stubAuthService struct {
	registered   application.RegisterParams
	registerErr  error
	authResult   application.AuthenticateResult
	authErr      error
	revokedToken string
}

func (s *stubAuthService) Register(_ context.Context, params application.RegisterParams) (application.User, error) {
	s.registered = params
	if s.registerErr != nil {
		return application.User{}, s.registerErr
	}
	return application.User{ID: "user-1", Username: params.Username, Email: params.Email, CreatedAt: time.Now()}, nil
}

func (s *stubAuthService) Authenticate(_ context.Context, _ application.AuthenticateParams) (application.AuthenticateResult, error) {
	if s.authErr != nil {
		return application.AuthenticateResult{}, s.authErr
	}
	return s.authResult, nil
}

func (s *stubAuthService) RevokeSession(_ context.Context, token string) error {
	s.revokedToken = token
	return nil
}

type stubSessionValidator struct {
	principals map[string]application.Principal
}

func (s *stubSessionValidator) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	principal, ok := s.principals[token]
	if !ok {
		return application.Principal{}, application.ErrUnauthorized
	}
	return principal, nil
}

type stubUserService struct {
	profile application.User
	err     error
}

func (s *stubUserService) GetProfile(_ context.Context, _ application.Principal) (application.User, error) {
	return s.profile, s.err
}

func (s *stubUserService) UpdateProfile(_ context.Context, params application.UpdateProfileParams) (application.User, error) {
	if s.err != nil {
		return application.User{}, s.err
	}
	updated := s.profile
	updated.Username = params.Username
	updated.Email = params.Email
	return updated, nil
}

type stubFriendService struct {
	friends []application.Friend
	users   []application.User
	addErr  error
}

func (s *stubFriendService) SearchUsers(_ context.Context, _ application.Principal, query string) ([]application.User, error) {
	if strings.TrimSpace(query) == "" {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"query": "a search query is required"}}
		return nil, vErr
	}
	return s.users, nil
}

func (s *stubFriendService) AddFriend(_ context.Context, _ application.Principal, _ string) error {
	return s.addErr
}

func (s *stubFriendService) ListFriends(_ context.Context, _ application.Principal) ([]application.Friend, error) {
	return s.friends, nil
}

func (s *stubFriendService) RemoveFriend(_ context.Context, _ application.Principal, _ string) error {
	return nil
}

type stubGameService struct {
	games []application.Game
	err   error
}

func (s *stubGameService) CreateGame(_ context.Context, _ application.Principal, input application.GameInput) (application.Game, error) {
	if s.err != nil {
		return application.Game{}, s.err
	}
	return application.Game{ID: "game-1", Title: input.Title, Genre: input.Genre, AverageSessionMins: input.AverageSessionMins}, nil
}

func (s *stubGameService) GetGame(_ context.Context, id string) (application.Game, error) {
	for _, game := range s.games {
		if game.ID == id {
			return game, nil
		}
	}
	return application.Game{}, application.ErrNotFound
}

func (s *stubGameService) UpdateGame(_ context.Context, _ application.Principal, id string, input application.GameInput) (application.Game, error) {
	if s.err != nil {
		return application.Game{}, s.err
	}
	return application.Game{ID: id, Title: input.Title, Genre: input.Genre, AverageSessionMins: input.AverageSessionMins}, nil
}

func (s *stubGameService) ListGames(_ context.Context) ([]application.Game, error) {
	return s.games, s.err
}

func (s *stubGameService) DeleteGame(_ context.Context, _ application.Principal, _ string) error {
	return s.err
}

type stubScheduleService struct {
	schedules  []application.Schedule
	created    application.CreateScheduleParams
	listParams application.ListSchedulesParams
	err        error
}

func (s *stubScheduleService) CreateSchedule(_ context.Context, params application.CreateScheduleParams) (application.Schedule, error) {
	s.created = params
	if s.err != nil {
		return application.Schedule{}, s.err
	}
	return application.Schedule{
		ID:        "schedule-1",
		OwnerID:   params.Principal.UserID,
		GameID:    params.Input.GameID,
		Title:     params.Input.Title,
		Date:      params.Input.Date,
		StartTime: params.Input.StartTime,
		EndTime:   "22:00",
	}, nil
}

func (s *stubScheduleService) GetSchedule(_ context.Context, _ application.Principal, id string) (application.Schedule, error) {
	for _, schedule := range s.schedules {
		if schedule.ID == id {
			return schedule, nil
		}
	}
	return application.Schedule{}, application.ErrNotFound
}

func (s *stubScheduleService) UpdateSchedule(_ context.Context, params application.UpdateScheduleParams) (application.Schedule, error) {
	if s.err != nil {
		return application.Schedule{}, s.err
	}
	return application.Schedule{ID: params.ScheduleID, Title: params.Input.Title, Date: params.Input.Date, StartTime: params.Input.StartTime}, nil
}

func (s *stubScheduleService) ListSchedules(_ context.Context, params application.ListSchedulesParams) ([]application.Schedule, error) {
	s.listParams = params
	return s.schedules, s.err
}

func (s *stubScheduleService) DeleteSchedule(_ context.Context, _ application.Principal, _ string) error {
	return s.err
}

func (s *stubScheduleService) RespondInvite(_ context.Context, _ application.RespondInviteParams) error {
	return s.err
}

type stubEventService struct {
	events []application.Event
	err    error
}

func (s *stubEventService) CreateEvent(_ context.Context, principal application.Principal, input application.EventInput) (application.Event, error) {
	if s.err != nil {
		return application.Event{}, s.err
	}
	return application.Event{ID: "event-1", OwnerID: principal.UserID, Title: input.Title, Date: input.Date, StartTime: input.StartTime, EndTime: input.EndTime}, nil
}

func (s *stubEventService) GetEvent(_ context.Context, _ application.Principal, id string) (application.Event, error) {
	for _, event := range s.events {
		if event.ID == id {
			return event, nil
		}
	}
	return application.Event{}, application.ErrNotFound
}

func (s *stubEventService) UpdateEvent(_ context.Context, _ application.Principal, id string, input application.EventInput) (application.Event, error) {
	if s.err != nil {
		return application.Event{}, s.err
	}
	return application.Event{ID: id, Title: input.Title, Date: input.Date, StartTime: input.StartTime, EndTime: input.EndTime}, nil
}

func (s *stubEventService) ListEvents(_ context.Context, _ application.Principal, _, _ *time.Time) ([]application.Event, error) {
	return s.events, s.err
}

func (s *stubEventService) ShareEvent(_ context.Context, _ application.Principal, _, _ string) error {
	return s.err
}

func (s *stubEventService) DeleteEvent(_ context.Context, _ application.Principal, _ string) error {
	return s.err
}

type stubNotificationService struct {
	notifications []application.Notification
	markedAll     bool
	marked        []string
	err           error
}

func (s *stubNotificationService) List(_ context.Context, _ application.Principal) ([]application.Notification, error) {
	return s.notifications, s.err
}

func (s *stubNotificationService) MarkRead(_ context.Context, _ application.Principal, id string) error {
	if s.err != nil {
		return s.err
	}
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubNotificationService) MarkAllRead(_ context.Context, _ application.Principal) error {
	if s.err != nil {
		return s.err
	}
	s.markedAll = true
	return nil
}

type stubTemplateService struct {
	templates      []application.Template
	generated      []string
	generatedDates []time.Time
	generateParams application.GenerateParams
	generateCalls  int
	err            error
}

func (s *stubTemplateService) CreateTemplate(_ context.Context, params application.CreateTemplateParams) (application.Template, error) {
	if s.err != nil {
		return application.Template{}, s.err
	}
	return application.Template{ID: "tmpl-1", OwnerID: params.Principal.UserID, Name: params.Input.Name, TimeOfDay: params.Input.TimeOfDay}, nil
}

func (s *stubTemplateService) GetTemplate(_ context.Context, _ application.Principal, id string) (application.Template, error) {
	for _, template := range s.templates {
		if template.ID == id {
			return template, nil
		}
	}
	return application.Template{}, application.ErrNotFound
}

func (s *stubTemplateService) UpdateTemplate(_ context.Context, params application.UpdateTemplateParams) (application.Template, error) {
	if s.err != nil {
		return application.Template{}, s.err
	}
	return application.Template{ID: params.TemplateID, Name: params.Input.Name}, nil
}

func (s *stubTemplateService) ListTemplates(_ context.Context, _ application.Principal) ([]application.Template, error) {
	return s.templates, s.err
}

func (s *stubTemplateService) DeleteTemplate(_ context.Context, _ application.Principal, _ string) error {
	return s.err
}

func (s *stubTemplateService) Generate(_ context.Context, params application.GenerateParams) ([]string, error) {
	s.generateCalls++
	s.generateParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.generated, nil
}

func (s *stubTemplateService) ListGeneratedDates(_ context.Context, _ application.Principal, id string) ([]time.Time, error) {
	if s.err != nil {
		return nil, s.err
	}
	if _, err := s.GetTemplate(context.Background(), application.Principal{}, id); err != nil {
		return nil, err
	}
	return s.generatedDates, nil
}

type routerFixture struct {
	auth          *stubAuthService
	users         *stubUserService
	friends       *stubFriendService
	games         *stubGameService
	schedules     *stubScheduleService
	events        *stubEventService
	notifications *stubNotificationService
	templates     *stubTemplateService
	sessions      *stubSessionValidator
	server        *httptest.Server
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	fixture := &routerFixture{
		auth:          &stubAuthService{},
		users:         &stubUserService{profile: application.User{ID: "user-1", Username: "alice", Email: "alice@example.com", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}},
		friends:       &stubFriendService{},
		games:         &stubGameService{},
		schedules:     &stubScheduleService{},
		events:        &stubEventService{},
		notifications: &stubNotificationService{},
		templates:     &stubTemplateService{},
		sessions: &stubSessionValidator{principals: map[string]application.Principal{
			"valid-token": {UserID: "user-1"},
		}},
	}

	router := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(fixture.auth, nil),
		Users:         NewUserHandler(fixture.users, nil),
		Friends:       NewFriendHandler(fixture.friends, nil),
		Games:         NewGameHandler(fixture.games, nil),
		Schedules:     NewScheduleHandler(fixture.schedules, nil),
		Events:        NewEventHandler(fixture.events, nil),
		Notifications: NewNotificationHandler(fixture.notifications, nil),
		Templates:     NewTemplateHandler(fixture.templates, nil),
		Sessions:      fixture.sessions,
		LoginBurst:    100,
	})

	fixture.server = httptest.NewServer(router)
	t.Cleanup(fixture.server.Close)
	return fixture
}

func (f *routerFixture) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, payload
}

func TestRegisterEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, payload := fixture.do(t, http.MethodPost, "/register", "",
		`{"username":"alice","email":"alice@example.com","password":"supersecret"}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body userResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "user-1", body.User.ID)
	assert.Equal(t, "alice", body.User.Username)
	assert.Equal(t, "alice", fixture.auth.registered.Username)
}

func TestRegisterEndpointValidationError(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.auth.registerErr = &application.ValidationError{FieldErrors: map[string]string{
		"email": "a valid email address is required",
	}}

	resp, payload := fixture.do(t, http.MethodPost, "/register", "",
		`{"username":"alice","email":"nope","password":"supersecret"}`)

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "a valid email address is required", body.Errors["email"])
}

func TestLoginEndpointSetsSessionCookie(t *testing.T) {
	fixture := newRouterFixture(t)
	expires := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	fixture.auth.authResult = application.AuthenticateResult{
		User:    application.User{ID: "user-1", Username: "alice", Email: "alice@example.com"},
		Session: application.Session{Token: "fresh-token", ExpiresAt: expires},
	}

	resp, payload := fixture.do(t, http.MethodPost, "/login", "",
		`{"email":"alice@example.com","password":"supersecret"}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "fresh-token", resp.Header.Get("X-Session-Token"))

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_token" {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, "fresh-token", sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)

	var body loginResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "fresh-token", body.Token)
	assert.Equal(t, "alice", body.User.Username)
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.auth.authErr = application.ErrInvalidCredentials

	resp, payload := fixture.do(t, http.MethodPost, "/login", "",
		`{"email":"alice@example.com","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "AUTH_INVALID_CREDENTIALS", body.ErrorCode)
}

func TestAuthenticatedEndpointsRequireSession(t *testing.T) {
	fixture := newRouterFixture(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodGet, "/friends"},
		{http.MethodGet, "/schedules"},
		{http.MethodGet, "/templates"},
		{http.MethodPost, "/logout"},
	}
	for _, tc := range paths {
		resp, _ := fixture.do(t, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	resp, _ := fixture.do(t, http.MethodGet, "/me", "bogus-token", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetProfileEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, payload := fixture.do(t, http.MethodGet, "/me", "valid-token", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body userResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "alice", body.User.Username)
	assert.Equal(t, "alice@example.com", body.User.Email)
}

func TestFriendSearchEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.friends.users = []application.User{
		{ID: "user-2", Username: "bobby", Email: "bobby@example.com", CreatedAt: time.Now()},
	}

	resp, payload := fixture.do(t, http.MethodGet, "/friends/search?q=bob", "valid-token", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Users []userDTO `json:"users"`
	}
	require.NoError(t, json.Unmarshal(payload, &body))
	require.Len(t, body.Users, 1)
	assert.Equal(t, "bobby", body.Users[0].Username)

	resp, _ = fixture.do(t, http.MethodGet, "/friends/search", "valid-token", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateScheduleEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, payload := fixture.do(t, http.MethodPost, "/schedules", "valid-token",
		`{"game_id":"game-1","title":"Raid Night","date":"2025-07-04","start_time":"20:30","duration_mins":90,"friend_ids":["user-2"]}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body scheduleResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "schedule-1", body.Schedule.ID)
	assert.Equal(t, "2025-07-04", body.Schedule.Date)

	created := fixture.schedules.created
	assert.Equal(t, "user-1", created.Principal.UserID)
	assert.Equal(t, []string{"user-2"}, created.Input.FriendIDs)
	assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), created.Input.Date)
}

func TestCreateScheduleEndpointRejectsBadDate(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, payload := fixture.do(t, http.MethodPost, "/schedules", "valid-token",
		`{"game_id":"game-1","title":"Raid Night","date":"07/04/2025","start_time":"20:30","duration_mins":90}`)

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Contains(t, body.Message, "YYYY-MM-DD")
	assert.Zero(t, fixture.schedules.created)
}

func TestListSchedulesEndpointPassesWindow(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.schedules.schedules = []application.Schedule{
		{ID: "schedule-1", OwnerID: "user-1", GameID: "game-1", Title: "Raid Night",
			Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), StartTime: "20:30", EndTime: "22:00"},
	}

	resp, payload := fixture.do(t, http.MethodGet, "/schedules?from=2025-07-01&until=2025-07-31", "valid-token", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Schedules []scheduleDTO `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(payload, &body))
	require.Len(t, body.Schedules, 1)

	require.NotNil(t, fixture.schedules.listParams.From)
	require.NotNil(t, fixture.schedules.listParams.Until)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), *fixture.schedules.listParams.From)
	assert.Equal(t, time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), *fixture.schedules.listParams.Until)
}

func TestListSchedulesEndpointInvalidWindow(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.schedules.err = application.ErrInvalidRange

	resp, payload := fixture.do(t, http.MethodGet, "/schedules?from=2025-07-31&until=2025-07-01", "valid-token", "")

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "the start date must be on or before the end date", body.Message)
}

func TestRespondInviteEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, _ := fixture.do(t, http.MethodPost, "/schedules/schedule-1/respond", "valid-token", `{"accept":true}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	fixture.schedules.err = application.ErrNotFound
	resp, _ = fixture.do(t, http.MethodPost, "/schedules/schedule-9/respond", "valid-token", `{"accept":false}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.templates.generated = []string{"schedule-1", "schedule-2", "schedule-3"}

	resp, payload := fixture.do(t, http.MethodPost, "/templates/tmpl-1/generate", "valid-token",
		`{"start_date":"2025-01-01","end_date":"2025-01-31"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body generateResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, []string{"schedule-1", "schedule-2", "schedule-3"}, body.Created)

	params := fixture.templates.generateParams
	assert.Equal(t, "tmpl-1", params.TemplateID)
	assert.Equal(t, "user-1", params.Principal.UserID)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), params.StartDate)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), params.EndDate)
}

func TestTemplateOccurrencesEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.templates.templates = []application.Template{{ID: "tmpl-1", OwnerID: "user-1", Name: "Raid Night"}}
	fixture.templates.generatedDates = []time.Time{
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC),
	}

	resp, payload := fixture.do(t, http.MethodGet, "/templates/tmpl-1/occurrences", "valid-token", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"dates":["2025-01-02","2025-01-09"]}`, string(payload))

	resp, _ = fixture.do(t, http.MethodGet, "/templates/tmpl-9/occurrences", "valid-token", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateEndpointEmptyResult(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, payload := fixture.do(t, http.MethodPost, "/templates/tmpl-1/generate", "valid-token",
		`{"start_date":"2025-01-01","end_date":"2025-01-31"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"created":[]}`, string(payload))
}

func TestGenerateEndpointRejectsLongRange(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, payload := fixture.do(t, http.MethodPost, "/templates/tmpl-1/generate", "valid-token",
		`{"start_date":"2025-01-01","end_date":"2025-08-01"}`)

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Zero(t, fixture.templates.generateCalls)

	var body errorResponse
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Contains(t, body.Message, "six months")
}

func TestGenerateEndpointAllowsExactlySixMonths(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, _ := fixture.do(t, http.MethodPost, "/templates/tmpl-1/generate", "valid-token",
		`{"start_date":"2025-01-01","end_date":"2025-07-01"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, fixture.templates.generateCalls)
}

func TestGenerateEndpointInvalidRange(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.templates.err = application.ErrInvalidRange

	resp, _ := fixture.do(t, http.MethodPost, "/templates/tmpl-1/generate", "valid-token",
		`{"start_date":"2025-02-01","end_date":"2025-01-01"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.notifications.notifications = []application.Notification{
		{ID: "notif-1", Kind: application.NotificationKindInvite, Message: "alice invited you to Raid Night", CreatedAt: time.Now()},
	}

	resp, payload := fixture.do(t, http.MethodGet, "/notifications", "valid-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Notifications []notificationDTO `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(payload, &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "notif-1", body.Notifications[0].ID)

	resp, _ = fixture.do(t, http.MethodPost, "/notifications/notif-1/read", "valid-token", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"notif-1"}, fixture.notifications.marked)

	resp, _ = fixture.do(t, http.MethodPost, "/notifications/read", "valid-token", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, fixture.notifications.markedAll)
}

func TestGameEndpoints(t *testing.T) {
	fixture := newRouterFixture(t)
	genre := "MMORPG"
	fixture.games.games = []application.Game{
		{ID: "game-1", Title: "Fantasy Quest", Genre: &genre, AverageSessionMins: 120},
	}

	resp, payload := fixture.do(t, http.MethodGet, "/games", "valid-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listBody struct {
		Games []gameDTO `json:"games"`
	}
	require.NoError(t, json.Unmarshal(payload, &listBody))
	require.Len(t, listBody.Games, 1)

	resp, payload = fixture.do(t, http.MethodPost, "/games", "valid-token",
		`{"title":"Space Raiders","average_session_mins":60}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var createBody gameResponse
	require.NoError(t, json.Unmarshal(payload, &createBody))
	assert.Equal(t, "Space Raiders", createBody.Game.Title)

	resp, _ = fixture.do(t, http.MethodGet, "/games/game-9", "valid-token", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventShareEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, _ := fixture.do(t, http.MethodPost, "/events/event-1/share", "valid-token", `{"friend_id":"user-2"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	fixture.events.err = application.ErrNotFound
	resp, _ = fixture.do(t, http.MethodPost, "/events/event-9/share", "valid-token", `{"friend_id":"user-2"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLogoutEndpointRevokesToken(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, _ := fixture.do(t, http.MethodPost, "/logout", "valid-token", "")

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "valid-token", fixture.auth.revokedToken)
}

func TestHealthEndpoints(t *testing.T) {
	fixture := newRouterFixture(t)

	resp, payload := fixture.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(payload))

	resp, _ = fixture.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
