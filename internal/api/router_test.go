package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio/workitems-api/internal/api/handler"
	"github.com/portfolio/workitems-api/internal/core/domain"
	"github.com/portfolio/workitems-api/internal/core/service"
	"github.com/portfolio/workitems-api/internal/pkg/config"
	"github.com/portfolio/workitems-api/internal/pkg/validation"
)

// ---------------------------------------------------------------------------
// In-memory stores
// ---------------------------------------------------------------------------

type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (m *memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) FindByUsernameOrEmail(_ context.Context, identifier string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users = append(m.users, &cp)
	return nil
}

type memWorkItems struct {
	mu    sync.Mutex
	items map[string]*domain.WorkItem
}

func newMemWorkItems() *memWorkItems {
	return &memWorkItems{items: make(map[string]*domain.WorkItem)}
}

func (m *memWorkItems) Create(_ context.Context, w *domain.WorkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.items[w.ID] = &cp
	return nil
}

func (m *memWorkItems) FindByID(_ context.Context, id string) (*domain.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.items[id]
	if !ok {
		return nil, domain.ErrWorkItemNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWorkItems) Update(_ context.Context, w *domain.WorkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[w.ID]; !ok {
		return domain.ErrWorkItemNotFound
	}
	cp := *w
	m.items[w.ID] = &cp
	return nil
}

func (m *memWorkItems) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrWorkItemNotFound
	}
	delete(m.items, id)
	return nil
}

// List supports the created-at ordering the router tests rely on.
func (m *memWorkItems) List(_ context.Context, q domain.WorkItemQuery) ([]*domain.WorkItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.WorkItem
	for _, w := range m.items {
		if q.Status != nil && w.Status != *q.Status {
			continue
		}
		if q.Priority != nil && w.Priority != *q.Priority {
			continue
		}
		cp := *w
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if q.SortDir == domain.SortDesc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		Env:            "production",
		SwaggerEnabled: true,
		AllowedOrigins: []string{"http://localhost:4200"},
	}
	tokens, err := service.NewTokenManager(service.TokenConfig{Secret: "router-test-secret-0123456789abcdef", TTL: time.Hour})
	require.NoError(t, err)

	v := validation.New()
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          zerolog.Nop(),
		AuthService:     service.NewAuthService(&memUsers{}, tokens, v, zerolog.Nop()),
		WorkItemService: service.NewWorkItemService(newMemWorkItems(), nil, 0, v, zerolog.Nop()),
		Tokens:          tokens,
		Validator:       v,
		Checks: map[string]handler.Check{
			"memory": func(context.Context) error { return nil },
		},
	})
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func register(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// ---------------------------------------------------------------------------
// Flows
// ---------------------------------------------------------------------------

func TestRouter_AuthFlow(t *testing.T) {
	e := newTestRouter(t)
	register(t, e)

	rec := do(e, http.MethodPost, "/api/auth/register", `{"username":"alice","email":"other@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username already exists", decode(t, rec)["error"])

	rec = do(e, http.MethodPost, "/api/auth/login", `{"usernameOrEmail":"alice@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["username"])

	wrongPassword := do(e, http.MethodPost, "/api/auth/login", `{"usernameOrEmail":"alice","password":"nope"}`, "")
	unknownUser := do(e, http.MethodPost, "/api/auth/login", `{"usernameOrEmail":"mallory","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())

	rec = do(e, http.MethodPost, "/api/auth/login", `{"usernameOrEmail":"","password":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WorkItemLifecycle(t *testing.T) {
	e := newTestRouter(t)
	token := register(t, e)

	rec := do(e, http.MethodPost, "/api/work-items", `{"title":"Write docs","description":"API reference"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "/api/work-items/"+id, rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Todo", created["status"])
	assert.Equal(t, "Medium", created["priority"])

	rec = do(e, http.MethodGet, "/api/work-items/"+id, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, "/api/work-items/"+id, `{"title":"Write docs","status":"Done","priority":"High"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)
	assert.Equal(t, "Done", updated["status"])
	assert.Nil(t, updated["description"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])

	rec = do(e, http.MethodGet, "/api/work-items?status=Done", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.EqualValues(t, 1, page["totalCount"])
	assert.EqualValues(t, 1, page["page"])
	assert.EqualValues(t, 10, page["pageSize"])

	rec = do(e, http.MethodDelete, "/api/work-items/"+id, "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, "/api/work-items/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "work item not found", decode(t, rec)["error"])

	rec = do(e, http.MethodDelete, "/api/work-items/"+id, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MutationsRequireToken(t *testing.T) {
	e := newTestRouter(t)

	cases := []struct{ method, path, body string }{
		{http.MethodPost, "/api/work-items", `{"title":"Write docs"}`},
		{http.MethodPut, "/api/work-items/9b2f8a52-0d7e-4e55-9a31-1f6f0c7b9a10", `{"title":"Write docs","status":"Todo","priority":"Low"}`},
		{http.MethodDelete, "/api/work-items/9b2f8a52-0d7e-4e55-9a31-1f6f0c7b9a10", ""},
	}
	for _, tc := range cases {
		rec := do(e, tc.method, tc.path, tc.body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)

		rec = do(e, tc.method, tc.path, tc.body, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s with bad token", tc.method, tc.path)
	}
}

func TestRouter_ValidationEnvelope(t *testing.T) {
	e := newTestRouter(t)
	token := register(t, e)

	rec := do(e, http.MethodPost, "/api/work-items", `{"title":"ab","priority":"Low"}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["error"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Contains(t, details, "title")

	rec = do(e, http.MethodGet, "/api/work-items?priority=Urgent", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_PagingClampsOutOfRangeValues(t *testing.T) {
	e := newTestRouter(t)

	rec := do(e, http.MethodGet, "/api/work-items?page=0&pageSize=500", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.EqualValues(t, 1, page["page"])
	assert.EqualValues(t, 10, page["pageSize"])
	assert.EqualValues(t, 0, page["totalPages"])
	assert.Equal(t, []any{}, page["items"])
}

// ---------------------------------------------------------------------------
// Ambient endpoints
// ---------------------------------------------------------------------------

func TestRouter_AmbientEndpoints(t *testing.T) {
	e := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health/ready", "", "").Code)

	// Counters are registered lazily per label set, so record a request first.
	do(e, http.MethodGet, "/api/work-items", "", "")
	rec := do(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "workitems_http_requests_total")

	rec = do(e, http.MethodGet, "/swagger/doc.json", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/work-items")
}

func TestRouter_CORSPreflight(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/work-items", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:4200")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:4200", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
