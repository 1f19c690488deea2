package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Chat_Community/internal/metrics"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository/mysql"
	"Chat_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := mysql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, mysql.Migrate(db))

	stores := mysql.NewStores(db)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	owners := pkg.NewOwnerCache(0)
	events := service.NewEventRecorder(stores.Outbox)

	return InitRouter(Deps{
		Users:       service.NewUserService(stores.Users),
		Communities: service.NewCommunityService(stores, owners, events, m),
		Members:     service.NewMembershipService(stores.Members),
		Chat:        service.NewChatService(stores, owners, events, m),
		Resolver:    pkg.PassthroughResolver{},
		Metrics:     m,
		Gatherer:    reg,
	})
}

func do(t *testing.T, r http.Handler, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("Authorization", "Bearer "+caller)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createUser(t *testing.T, r http.Handler, name, email string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/users", "", gin.H{"name": name, "email": email, "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["id"].(string)
}

func createCommunity(t *testing.T, r http.Handler, owner, name string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/communities", owner, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["community"].(map[string]any)["id"].(string)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/communities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/communities", "not-an-id", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessagingFlow(t *testing.T) {
	r := newTestRouter(t)
	owner := createUser(t, r, "owner", "owner@x.com")
	member := createUser(t, r, "member", "member@x.com")
	outsider := createUser(t, r, "outsider", "outsider@x.com")
	cid := createCommunity(t, r, owner, "gophers")

	w := do(t, r, http.MethodPost, "/api/communities/"+cid+"/members", member, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/communities/"+cid+"/members", member, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_MEMBERSHIP", decode(t, w)["code"])

	w = do(t, r, http.MethodPost, "/api/communities/"+cid+"/messages", outsider, gin.H{"text": "let me in"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_A_MEMBER", decode(t, w)["code"])

	var firstID string
	for i := 0; i < service.MaxMessagesPerWindow; i++ {
		w = do(t, r, http.MethodPost, "/api/communities/"+cid+"/messages", member, gin.H{"text": "hello"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		if firstID == "" {
			firstID = decode(t, w)["id"].(string)
		}
	}
	w = do(t, r, http.MethodPost, "/api/communities/"+cid+"/messages", member, gin.H{"text": "spam"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, w)["code"])

	w = do(t, r, http.MethodGet, "/api/communities/"+cid+"/messages?limit=2", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["list"], 2)

	w = do(t, r, http.MethodPatch, "/api/messages/"+firstID, outsider, gin.H{"text": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodPatch, "/api/messages/"+firstID, owner, gin.H{"text": "moderated"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "moderated", decode(t, w)["text"])

	w = do(t, r, http.MethodDelete, "/api/messages/"+firstID, member, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/messages/"+firstID, member, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommunityEndpoints(t *testing.T) {
	r := newTestRouter(t)
	owner := createUser(t, r, "owner", "owner@x.com")
	other := createUser(t, r, "other", "other@x.com")
	cid := createCommunity(t, r, owner, "gophers")

	w := do(t, r, http.MethodPatch, "/api/communities/"+cid, other, gin.H{"name": "stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPatch, "/api/communities/"+cid, owner, gin.H{"name": "renamed", "owner": other})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "renamed", body["name"])
	assert.Equal(t, owner, body["owner"])

	w = do(t, r, http.MethodGet, "/api/communities/not-valid", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REFERENCE", decode(t, w)["code"])

	w = do(t, r, http.MethodGet, "/api/users/"+owner+"/owned-communities", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["list"], 1)

	w = do(t, r, http.MethodDelete, "/api/communities/"+cid, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "warning")

	w = do(t, r, http.MethodGet, "/api/communities/"+cid+"/members", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["list"])

	w = do(t, r, http.MethodDelete, "/api/communities/"+cid, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	r := newTestRouter(t)
	id := createUser(t, r, "alice", "alice@x.com")

	w := do(t, r, http.MethodPost, "/api/users", "", gin.H{"name": "alice", "email": "alice@x.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_TAKEN", decode(t, w)["code"])

	w = do(t, r, http.MethodGet, "/api/users/"+id, id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "password")

	w = do(t, r, http.MethodPatch, "/api/users/"+id, pkg.NewID(), gin.H{"name": "mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPatch, "/api/users/"+id, id, gin.H{"gender": "f"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "f", decode(t, w)["gender"])

	w = do(t, r, http.MethodPatch, "/api/users/"+id, id, gin.H{"role": "admin", "address": "1 Main St"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, "1 Main St", body["address"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodGet, "/healthz", "", nil)

	w := do(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "chat_http_requests_total"))
}
