package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/config"
	"github.com/AnshRaj112/afterthedoll-backend/internal/handlers"
	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/AnshRaj112/afterthedoll-backend/internal/store/memstore"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
	mem *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zaptest.NewLogger(t)
	mem := memstore.New()
	kv := memstore.NewKV()

	_, err := services.SeedCategories(context.Background(), mem, nil)
	require.NoError(t, err)

	sessions := services.NewSessionService(kv, auth.NewJWTManager("test-secret", time.Hour))
	users := services.NewUserService(mem, mem, services.NewProfileCache(kv, time.Minute), nil, log)
	friends := services.NewFriendshipService(mem, users, log)
	journal := services.NewJournalService(mem, users, friends, log)
	forum := services.NewForumService(mem, users, log, true)

	cfg := &config.Config{Environment: "development", AllowedOrigins: []string{"http://localhost:3000"}}
	r := NewRouter(cfg, log, Handlers{
		Auth:    handlers.NewAuthHandler(users, sessions, log),
		Users:   handlers.NewUserHandler(users, journal, nil, log),
		Journal: handlers.NewJournalHandler(journal, log),
		Friends: handlers.NewFriendHandler(friends, log),
		Forum:   handlers.NewForumHandler(forum, log),
		AuthMW:  middleware.NewAuthMiddleware(sessions),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, mem: mem}
}

// do sends body as JSON and decodes the JSON answer into a generic map.
func (ts *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// signup registers username and returns its session token and uid.
func (ts *testServer) signup(username string) (token, uid string) {
	ts.t.Helper()
	status, body := ts.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"password": "correct horse battery",
	})
	require.Equal(ts.t, http.StatusCreated, status, body)
	token, _ = body["token"].(string)
	require.NotEmpty(ts.t, token)
	user := body["user"].(map[string]interface{})
	return token, user["uid"].(string)
}

func field(body map[string]interface{}, obj, key string) string {
	m, _ := body[obj].(map[string]interface{})
	s, _ := m[key].(string)
	return s
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.srv.Client().Get(ts.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := ts.srv.Client().Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	raw, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `afterthedoll_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token, uid := ts.signup("alice")

	status, body := ts.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uid, field(body, "user", "uid"))

	status, body = ts.do(http.MethodPost, "/api/auth/check-username", "", map[string]string{"username": "Alice"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["available"])

	status, _ = ts.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "alice", "password": "another password",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"username": "alice", "password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = ts.do(http.MethodPost, "/api/auth/signin", "", map[string]string{
		"username": "alice", "password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, status)
	fresh, _ := body["token"].(string)
	require.NotEmpty(t, fresh)

	// one session per user: signing in again revokes the signup token
	status, _ = ts.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(http.MethodPost, "/api/auth/signout", fresh, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = ts.do(http.MethodGet, "/api/auth/me", fresh, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	status, body := ts.do(http.MethodPost, "/api/entries", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestEntryVisibilityOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := ts.signup("alice")
	bobToken, _ := ts.signup("bob")

	status, body := ts.do(http.MethodPost, "/api/entries", aliceToken, map[string]interface{}{
		"title":      "for friends",
		"body":       "only friends should see this",
		"tags_raw":   "Dreams, night",
		"visibility": "friends",
	})
	require.Equal(t, http.StatusCreated, status, body)
	entryID := field(body, "entry", "entry_id")
	require.NotEmpty(t, entryID)

	status, _ = ts.do(http.MethodGet, "/api/entries/"+entryID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = ts.do(http.MethodGet, "/api/entries/"+entryID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// bob asks, alice accepts
	status, body = ts.do(http.MethodPost, "/api/friends/requests", bobToken, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusCreated, status, body)
	requestID := field(body, "request", "request_id")

	status, _ = ts.do(http.MethodPost, "/api/friends/requests/"+requestID+"/respond", bobToken, map[string]string{"decision": "accepted"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = ts.do(http.MethodPost, "/api/friends/requests/"+requestID+"/respond", aliceToken, map[string]string{"decision": "accepted"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "accepted", field(body, "request", "status"))

	status, _ = ts.do(http.MethodPost, "/api/friends/requests/"+requestID+"/respond", aliceToken, map[string]string{"decision": "declined"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = ts.do(http.MethodGet, "/api/entries/"+entryID, bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "for friends", field(body, "entry", "title"))

	status, _ = ts.do(http.MethodPut, "/api/entries/"+entryID, bobToken, map[string]string{"title": "hijacked"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(http.MethodPost, "/api/entries/"+entryID+"/comments", bobToken, map[string]string{"body": "lovely"})
	require.Equal(t, http.StatusCreated, status)
	status, body = ts.do(http.MethodGet, "/api/entries/"+entryID+"/comments", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["comments"], 1)

	status, body = ts.do(http.MethodGet, "/api/users/alice", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, true, profile["is_friend"])
	assert.Len(t, profile["entries"], 1)

	status, body = ts.do(http.MethodGet, "/api/users/alice", "", nil)
	require.Equal(t, http.StatusOK, status)
	profile = body["profile"].(map[string]interface{})
	assert.Empty(t, profile["entries"])
}

func TestFriendRequestToSelf(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signup("alice")
	status, _ := ts.do(http.MethodPost, "/api/friends/requests", token, map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = ts.do(http.MethodPost, "/api/friends/requests", token, map[string]string{"username": "nobody"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestForumOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signup("alice")

	status, body := ts.do(http.MethodGet, "/api/forum/categories", "", nil)
	require.Equal(t, http.StatusOK, status)
	cats := body["categories"].([]interface{})
	require.NotEmpty(t, cats)
	categoryID := cats[0].(map[string]interface{})["category_id"].(string)

	status, body = ts.do(http.MethodPost, "/api/forum/threads", token, map[string]string{
		"category_id": categoryID, "title": "hello", "body": "first post",
	})
	require.Equal(t, http.StatusCreated, status, body)
	threadID := field(body, "thread", "thread_id")

	status, _ = ts.do(http.MethodPost, "/api/forum/threads/"+threadID+"/replies", token, map[string]string{"body": "a reply"})
	require.Equal(t, http.StatusCreated, status)

	status, body = ts.do(http.MethodGet, "/api/forum/threads/"+threadID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["replies"], 1)

	status, _ = ts.do(http.MethodPost, "/api/forum/threads", token, map[string]string{
		"category_id": "nope", "title": "hello", "body": "first post",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStoreOutageMapsTo503(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signup("alice")
	ts.mem.FailOn("CreateEntry", assert.AnError)

	status, body := ts.do(http.MethodPost, "/api/entries", token, map[string]string{"title": "x", "body": "y"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Action failed, please try again", body["message"])
}
