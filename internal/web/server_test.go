package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zoja7431/task-manage/internal/config"
	"github.com/Zoja7431/task-manage/internal/db"
)

var testNow = time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC) // a Wednesday

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	database, err := db.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.Session.Secret = "test-secret"
	// Low cost keeps the tests fast.
	cfg.Auth.BcryptCost = 4

	srv, err := New(database, zap.NewNop(), cfg)
	require.NoError(t, err)
	srv.now = func() time.Time { return testNow }

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

// newClient returns an http client with a cookie jar that does not follow
// redirects, so tests can assert on Location headers.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// signUp registers and logs in a user, leaving the session cookie in the
// client's jar.
func signUp(t *testing.T, client *http.Client, baseURL, username string) {
	t.Helper()
	resp := postForm(t, client, baseURL+"/register", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = postForm(t, client, baseURL+"/login", url.Values{
		"username": {username},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestUnauthenticatedAccess(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)

	resp := get(t, client, ts.URL+"/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/welcome", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/weekly")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/api/task/1")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)

	resp := postForm(t, client, ts.URL+"/register", url.Values{
		"username": {"ab"},
		"email":    {"not-an-email"},
		"password": {"123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	require.Contains(t, html, "Username must be 4 to 20 characters")
	require.Contains(t, html, "Enter a valid email address")
	require.Contains(t, html, "Password must be at least 6 characters")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	other := newClient(t)
	resp := postForm(t, other, ts.URL+"/register", url.Values{
		"username": {"alice"},
		"email":    {"second@example.com"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), "already taken")
}

func TestLoginWrongPassword(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	resp := postForm(t, newClient(t), ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrong-password"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), "Incorrect password")
}

func TestTaskLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/tasks", url.Values{
		"title":    {"write report"},
		"priority": {"high"},
		"due_date": {"2025-03-14"},
		"tags":     {"Work, deep-focus"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = get(t, client, ts.URL+"/api/task/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var task taskJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.Equal(t, "write report", task.Title)
	require.Equal(t, "high", task.Priority)
	require.Equal(t, "in_progress", task.Status)
	require.Equal(t, "2025-03-14", task.DueDate)
	require.Equal(t, "deep-focus, work", task.Tags)

	// Update replaces the tag set wholesale.
	resp = postForm(t, client, ts.URL+"/api/task/1", url.Values{
		"title":    {"write report v2"},
		"priority": {"medium"},
		"tags":     {"work"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, client, ts.URL+"/api/task/1")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.Equal(t, "write report v2", task.Title)
	require.Equal(t, "work", task.Tags)

	// Toggle completed, then clear.
	resp = postForm(t, client, ts.URL+"/tasks/1/complete", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = postForm(t, client, ts.URL+"/tasks/clear-completed", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = get(t, client, ts.URL+"/api/task/1")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskUpdateRequiresTitle(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	postForm(t, client, ts.URL+"/tasks", url.Values{"title": {"t"}})

	resp := postForm(t, client, ts.URL+"/api/task/1", url.Values{"title": {"  "}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The task is untouched.
	resp = get(t, client, ts.URL+"/api/task/1")
	var task taskJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.Equal(t, "t", task.Title)
}

func TestTaskStatusDerivedOverdue(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	postForm(t, client, ts.URL+"/tasks", url.Values{
		"title":    {"late"},
		"due_date": {"2025-03-10"}, // before the fixed test clock
	})

	resp := get(t, client, ts.URL+"/api/task/1")
	var task taskJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.Equal(t, "overdue", task.Status)

	// Moving the due date to the future reverts the presented status.
	postForm(t, client, ts.URL+"/api/task/1", url.Values{
		"title":    {"late"},
		"due_date": {"2025-03-20"},
	})
	resp = get(t, client, ts.URL+"/api/task/1")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.Equal(t, "in_progress", task.Status)
}

func TestTaskOwnership(t *testing.T) {
	_, ts := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, ts.URL, "alice")
	postForm(t, alice, ts.URL+"/tasks", url.Values{"title": {"secret"}})

	bob := newClient(t)
	signUp(t, bob, ts.URL, "bobby")

	resp := get(t, bob, ts.URL+"/api/task/1")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postForm(t, bob, ts.URL+"/api/task/1", url.Values{"title": {"mine now"}})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, alice, ts.URL+"/api/task/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTagEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/tags", url.Values{"name": {"Work"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tag tagJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tag))
	require.Equal(t, "work", tag.Name)

	// Case-insensitive duplicate.
	resp = postForm(t, client, ts.URL+"/tags", url.Values{"name": {"WORK"}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Attach the tag to a task, then check the usage count.
	postForm(t, client, ts.URL+"/tasks", url.Values{"title": {"t"}, "tags": {"work"}})
	resp = get(t, client, ts.URL+"/api/tags/work/tasks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var usage struct {
		Name      string `json:"name"`
		TaskCount int    `json:"taskCount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&usage))
	require.Equal(t, "work", usage.Name)
	require.Equal(t, 1, usage.TaskCount)

	// Rename.
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/tags/work",
		strings.NewReader(url.Values{"name": {"office"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	renameResp, err := client.Do(req)
	require.NoError(t, err)
	defer renameResp.Body.Close()
	require.Equal(t, http.StatusOK, renameResp.StatusCode)

	// Delete keeps the task.
	req, err = http.NewRequest(http.MethodDelete, ts.URL+"/tags/office", nil)
	require.NoError(t, err)
	delResp, err := client.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	resp = get(t, client, ts.URL+"/api/task/1")
	var task taskJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.Equal(t, "t", task.Title)
	require.Empty(t, task.Tags)
}

func TestWeeklyView(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	// Two tasks on Monday, five on Wednesday of the fixed clock's week.
	postForm(t, client, ts.URL+"/tasks", url.Values{"title": {"m1"}, "due_date": {"2025-03-10"}})
	postForm(t, client, ts.URL+"/tasks", url.Values{"title": {"m2"}, "due_date": {"2025-03-10"}})
	for i := 0; i < 5; i++ {
		postForm(t, client, ts.URL+"/tasks", url.Values{"title": {"w"}, "due_date": {"2025-03-12"}})
	}

	resp := get(t, client, ts.URL+"/weekly")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	require.Contains(t, html, "Week of 2025-03-10")
	require.Contains(t, html, "count intensity-low")
	require.Contains(t, html, "count intensity-high")
	require.Contains(t, html, "count intensity-empty")

	// Paging a week forward shows an empty week.
	resp = get(t, client, ts.URL+"/weekly?weekOffset=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html = body(t, resp)
	require.Contains(t, html, "Week of 2025-03-17")
	require.NotContains(t, html, "count intensity-high")
}

func TestHomeFilters(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	postForm(t, client, ts.URL+"/tasks", url.Values{"title": {"overdue-task"}, "due_date": {"2025-03-01"}})
	postForm(t, client, ts.URL+"/tasks", url.Values{"title": {"current-task"}, "tags": {"home"}})

	resp := get(t, client, ts.URL+"/?status=overdue")
	html := body(t, resp)
	require.Contains(t, html, "overdue-task")
	require.NotContains(t, html, "current-task")

	resp = get(t, client, ts.URL+"/?tags=home")
	html = body(t, resp)
	require.Contains(t, html, "current-task")
	require.NotContains(t, html, "overdue-task")

	// An unrecognized status value is ignored, not treated as a filter.
	resp = get(t, client, ts.URL+"/?status=bogus")
	html = body(t, resp)
	require.Contains(t, html, "overdue-task")
	require.Contains(t, html, "current-task")
}

func TestProfileUpdate(t *testing.T) {
	srv, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/profile", url.Values{
		"username": {"alice2"},
		"email":    {"alice2@example.com"},
		"avatar":   {"#ff8800"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/profile", resp.Header.Get("Location"))

	user, err := srv.db.GetUserByLogin("alice2")
	require.NoError(t, err)
	require.Equal(t, "alice2@example.com", user.Email)
	require.Equal(t, "#ff8800", user.Avatar)
}

func TestProfileRejectsTakenUsername(t *testing.T) {
	_, ts := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, ts.URL, "alice")
	bob := newClient(t)
	signUp(t, bob, ts.URL, "bobby")

	resp := postForm(t, bob, ts.URL+"/profile", url.Values{
		"username": {"alice"},
		"email":    {"bobby@example.com"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), "already taken")
}

func TestCheckUsername(t *testing.T) {
	_, ts := newTestServer(t)
	client := newClient(t)
	signUp(t, client, ts.URL, "alice")

	resp := get(t, newClient(t), ts.URL+"/api/check-username?username=alice")
	var out struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.False(t, out.Available)

	resp = get(t, newClient(t), ts.URL+"/api/check-username?username=fresh")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Available)
}
