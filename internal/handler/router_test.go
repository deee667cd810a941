package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/metrics"
	"github.com/prn-tf/taskflow/internal/repository"
	"github.com/prn-tf/taskflow/internal/repository/memory"
	"github.com/prn-tf/taskflow/internal/store"
)

type fakeGenerator struct{}

func (fakeGenerator) Summarize(_ context.Context, project domain.Project, tasks []domain.Task, _ []domain.User) string {
	return project.Name + " is on track"
}

func (fakeGenerator) SuggestSubtasks(_ context.Context, title, _ string) []string {
	return []string{"Plan " + title}
}

type testAPI struct {
	store   *store.Store
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	s, err := store.New(context.Background(), store.Options{
		Collections: repository.NewCollections(memory.NewBackend(), "", zerolog.Nop()),
		Logger:      zerolog.Nop(),
		Seed:        true,
	})
	require.NoError(t, err)

	rt := NewRouter(RouterConfig{
		Store:       s,
		AI:          fakeGenerator{},
		Metrics:     metrics.New(),
		MetricsPath: "/metrics",
		Logger:      zerolog.Nop(),
	})
	return &testAPI{store: s, handler: rt.Handler()}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, username, password string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/session", LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSession(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NoSession", decode[ErrorResponse](t, rec).Code)

	rec = api.do(t, http.MethodPost, "/api/session", LoginRequest{Username: "john", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/session", strings.Repeat("x", 3))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.login(t, "john", "123")
	rec = api.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[domain.User](t, rec)
	assert.Equal(t, "u3", user.ID)
	assert.Empty(t, user.Password)

	rec = api.do(t, http.MethodDelete, "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, api.store.Session())
}

func TestUsers(t *testing.T) {
	api := newTestAPI(t)

	api.login(t, "john", "123")
	rec := api.do(t, http.MethodPost, "/api/users", domain.User{Username: "eve", Password: "x", Role: domain.RoleMember})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "AccessDenied", decode[ErrorResponse](t, rec).Code)

	api.login(t, "Aliyan", "1234")

	rec = api.do(t, http.MethodPost, "/api/users", domain.User{Username: "john", Password: "x", Role: domain.RoleMember})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UserAlreadyExists", decode[ErrorResponse](t, rec).Code)

	rec = api.do(t, http.MethodPost, "/api/users", domain.User{Username: "eve", Password: "x", Role: "Owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/users", domain.User{Username: "eve", Password: "x", Role: domain.RoleMember, FullName: "Eve"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.User](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Password)

	before, ok := api.store.User("u3")
	require.True(t, ok)
	rec = api.do(t, http.MethodPut, "/api/users/u3", domain.User{Username: "john", Role: domain.RoleProjectManager, FullName: "John Dev"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	after, _ := api.store.User("u3")
	assert.Equal(t, before.Password, after.Password)
	assert.Equal(t, domain.RoleProjectManager, after.Role)
	assert.Equal(t, domain.ActionRoleUpdated, api.store.Logs()[0].Action)

	rec = api.do(t, http.MethodPut, "/api/users/nobody", domain.User{Username: "x", Role: domain.RoleMember})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/users/u1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/users/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/users", nil)
	users := decode[[]domain.User](t, rec)
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
}

func TestProjectsAndTasks(t *testing.T) {
	api := newTestAPI(t)
	api.login(t, "Aliyan", "1234")

	rec := api.do(t, http.MethodPost, "/api/projects", domain.Project{Name: "Secret", Members: []string{"u1"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	secret := decode[domain.Project](t, rec)

	api.login(t, "john", "123")

	rec = api.do(t, http.MethodGet, "/api/projects", nil)
	assert.Len(t, decode[[]domain.Project](t, rec), 2)

	rec = api.do(t, http.MethodGet, "/api/projects/"+secret.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/projects", domain.Project{Name: "Mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/projects/p1/tasks", nil)
	assert.Len(t, decode[[]domain.Task](t, rec), 3)

	rec = api.do(t, http.MethodPut, "/api/tasks/t3/status", MoveTaskRequest{Status: domain.StatusDone})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, `Task "User Testing": Status: To Do -> Done`, api.store.Logs()[0].Details)

	rec = api.do(t, http.MethodPut, "/api/tasks/t3/status", MoveTaskRequest{Status: "Blocked"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/tasks/t1/comments", CommentRequest{Text: "Looks good"})
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode[domain.Comment](t, rec)
	assert.Equal(t, "John Dev", comment.UserName)

	rec = api.do(t, http.MethodPost, "/api/tasks/t1/comments", CommentRequest{Text: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/tasks", domain.Task{ProjectID: secret.ID, Title: "Sneaky"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/tasks", domain.Task{ProjectID: "p2", Title: "Store listing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[domain.Task](t, rec)
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)

	rec = api.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/assignees/u3", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	got, _ := api.store.Task(task.ID)
	assert.Equal(t, []string{"u3"}, got.AssignedTo)

	rec = api.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := api.store.Task(task.ID)
	assert.False(t, ok)
}

func TestAIEndpointsRecordActions(t *testing.T) {
	api := newTestAPI(t)
	api.login(t, "sarah", "123")

	rec := api.do(t, http.MethodPost, "/api/projects/p1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Website Revamp is on track", decode[SummaryResponse](t, rec).Summary)
	assert.Equal(t, domain.ActionAI, api.store.Logs()[0].Action)
	assert.Equal(t, "Generated summary for project Website Revamp", api.store.Logs()[0].Details)

	rec = api.do(t, http.MethodPost, "/api/tasks/t2/subtasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Plan Design Database"}, decode[SubtasksResponse](t, rec).Subtasks)
	assert.Equal(t, `Generated subtasks for task "Design Database"`, api.store.Logs()[0].Details)
	assert.Equal(t, "sarah", api.store.Logs()[0].PerformedBy)
}

func TestReports(t *testing.T) {
	api := newTestAPI(t)

	api.login(t, "john", "123")
	rec := api.do(t, http.MethodPost, "/api/reports", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	api.login(t, "sarah", "123")
	rec = api.do(t, http.MethodPost, "/api/reports", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	report := decode[domain.CustomReport](t, rec)
	assert.Equal(t, "New Custom Report", report.Title)
	assert.Equal(t, "u2", report.CreatedBy)

	rec = api.do(t, http.MethodPost, "/api/reports/"+report.ID+"/columns", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	column := decode[domain.Column](t, rec)
	assert.Equal(t, store.DefaultColumnName, column.Name)

	rec = api.do(t, http.MethodPut, "/api/reports/"+report.ID+"/rows/r1/cells/"+column.ID, CellRequest{Value: "42"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/reports/"+report.ID+"/title", TitleRequest{Title: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/reports/"+report.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.CustomReport](t, rec)
	assert.Equal(t, "42", got.Rows[0].Data[column.ID])

	rec = api.do(t, http.MethodGet, "/api/reports/"+report.ID+"/xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = api.do(t, http.MethodDelete, "/api/reports/"+report.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Deleted custom report: New Custom Report", api.store.Logs()[0].Details)
}

func TestAnnouncementsAndLogs(t *testing.T) {
	api := newTestAPI(t)

	api.login(t, "sarah", "123")
	rec := api.do(t, http.MethodPost, "/api/announcements", AnnouncementRequest{Title: "Hi", Content: "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/logs", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	api.login(t, "Aliyan", "1234")
	rec = api.do(t, http.MethodPost, "/api/announcements", AnnouncementRequest{Title: "Launch", Content: "We ship **today**"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[AnnouncementView](t, rec)
	assert.Equal(t, "Aliyan", created.CreatedBy)
	assert.Contains(t, created.HTML, "<strong>today</strong>")

	rec = api.do(t, http.MethodGet, "/api/announcements", nil)
	require.Len(t, decode[[]AnnouncementView](t, rec), 1)

	rec = api.do(t, http.MethodGet, "/api/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]domain.Log](t, rec)
	assert.Equal(t, "Posted announcement: Launch", logs[0].Details)
}

func TestExportCSV(t *testing.T) {
	api := newTestAPI(t)
	api.login(t, "john", "123")

	rec := api.do(t, http.MethodGet, "/api/export/tasks.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	lines := strings.Split(rec.Body.String(), "\n")
	assert.Equal(t, "Project,Task Title,Assignees,Status,Priority,Start Date,End Date,Comment Count", lines[0])
	assert.Len(t, lines, 4)
	assert.Equal(t, "Exported CSV report containing 3 tasks", api.store.Logs()[0].Details)

	rec = api.do(t, http.MethodGet, "/api/export/tasks.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="tasks.xlsx"`, rec.Header().Get("Content-Disposition"))
}
