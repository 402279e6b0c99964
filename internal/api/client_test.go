package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/api/apitest"
)

// tokenBox is a mutable oauth2.TokenSource.
type tokenBox struct{ token string }

var errNoToken = errors.New("no token")

func (b *tokenBox) Token() (*oauth2.Token, error) {
	if b.token == "" {
		return nil, errNoToken
	}
	return &oauth2.Token{AccessToken: b.token}, nil
}

func newClient(t *testing.T) (*api.Client, *apitest.Server, *tokenBox) {
	t.Helper()
	srv := apitest.New(t)
	box := &tokenBox{}
	return api.New(srv.URL, box, api.WithTimeout(2*time.Second)), srv, box
}

func TestLoginReturnsToken(t *testing.T) {
	c, srv, _ := newClient(t)
	srv.AddUser("ana@example.com", "hunter2")

	res, err := c.Login(context.Background(), "ana@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, "bearer", res.TokenType)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	require.Empty(t, reqs[0].Authorization, "login must not carry a bearer token")
	require.NotEmpty(t, reqs[0].RequestID)
}

func TestLoginRejected(t *testing.T) {
	c, srv, _ := newClient(t)
	srv.AddUser("ana@example.com", "hunter2")

	_, err := c.Login(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, api.ErrAuthRejected)

	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	require.Equal(t, "Incorrect username or password", httpErr.Detail)
}

func TestLoginServerErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := api.New(srv.URL, &tokenBox{})

	_, err := c.Login(context.Background(), "a", "b")
	require.Error(t, err)
	require.NotErrorIs(t, err, api.ErrAuthRejected)
}

func TestRegister(t *testing.T) {
	c, srv, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "new@example.com", "pw"))
	require.True(t, srv.HasUser("new@example.com"))

	err := c.Register(ctx, "new@example.com", "pw")
	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, "Email already registered", httpErr.Detail)
}

func TestTaskCallsCarryBearerToken(t *testing.T) {
	c, srv, box := newClient(t)
	box.token = srv.Mint("ana@example.com")
	ctx := context.Background()

	created, err := c.CreateTask(ctx, api.TaskInput{Title: "Buy milk", Status: api.StatusToDo})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Buy milk", tasks[0].Title)

	for _, r := range srv.Requests() {
		require.Equal(t, "Bearer "+box.token, r.Authorization, "%s %s", r.Method, r.Path)
	}
}

func TestTaskCallsUseCurrentToken(t *testing.T) {
	c, srv, box := newClient(t)
	ctx := context.Background()

	_, err := c.ListTasks(ctx)
	require.ErrorIs(t, err, errNoToken)
	require.Empty(t, srv.Requests(), "no request leaves without a token")

	box.token = srv.Mint("ana@example.com")
	_, err = c.ListTasks(ctx)
	require.NoError(t, err)
}

func TestUpdateAndDelete(t *testing.T) {
	c, srv, box := newClient(t)
	box.token = srv.Mint("ana@example.com")
	ctx := context.Background()
	task := srv.AddTask(api.TaskInput{Title: "Write report"})

	in := task.Input()
	in.Status = api.StatusInProgress
	updated, err := c.UpdateTask(ctx, task.ID, in)
	require.NoError(t, err)
	require.Equal(t, api.StatusInProgress, updated.Status)
	require.Equal(t, api.StatusInProgress, srv.Tasks()[0].Status)

	require.NoError(t, c.DeleteTask(ctx, task.ID))
	require.Empty(t, srv.Tasks())

	err = c.DeleteTask(ctx, task.ID)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestRevokedTokenIsUnauthorized(t *testing.T) {
	c, srv, box := newClient(t)
	box.token = srv.Mint("ana@example.com")
	srv.RevokeAll()

	_, err := c.ListTasks(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestValidationDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"},{"msg":"too short"}]}`))
	}))
	defer srv.Close()
	c := api.New(srv.URL, &tokenBox{token: "t"})

	_, err := c.CreateTask(context.Background(), api.TaskInput{})
	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, "field required; too short", httpErr.Detail)
}

func TestNumericTaskIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 42, "title": "a", "status": "Completed"}, {"id": "x1", "title": "b", "status": "To Do"}]`))
	}))
	defer srv.Close()
	c := api.New(srv.URL, &tokenBox{token: "t"})

	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	require.Equal(t, api.ID("42"), tasks[0].ID)
	require.Equal(t, api.ID("x1"), tasks[1].ID)
}

func TestStatusCycle(t *testing.T) {
	require.Equal(t, api.StatusInProgress, api.StatusToDo.Next())
	require.Equal(t, api.StatusCompleted, api.StatusInProgress.Next())
	require.Equal(t, api.StatusToDo, api.StatusCompleted.Next())
	require.Equal(t, api.StatusToDo, api.Status("TODO").Next())
	require.False(t, api.Status("TODO").Valid())
}

func TestDescribeToken(t *testing.T) {
	srv := apitest.New(t)
	id, ok := api.DescribeToken(srv.Mint("ana@example.com"))
	require.True(t, ok)
	require.Equal(t, "ana@example.com", id.Subject)
	require.False(t, id.Expired(time.Now()))
	require.True(t, id.Expired(time.Now().Add(2*time.Hour)))

	_, ok = api.DescribeToken("opaque-" + strings.Repeat("x", 10))
	require.False(t, ok)
}
