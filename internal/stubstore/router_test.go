package stubstore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, opts Options) (*gin.Engine, *Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewMemory()
	return NewRouter(NewController(store, opts, nil)), store
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestController_Count(t *testing.T) {
	router, store := setupRouter(t, Options{})
	require.NoError(t, store.Insert("links", []Row{{"id": "1"}, {"id": "2"}}))

	w := do(router, http.MethodGet, "/rest/v1/links?select=count&limit=1", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []map[string]int{{"count": 2}}, body)
}

func TestController_APIKey(t *testing.T) {
	router, _ := setupRouter(t, Options{APIKey: "secret"})

	t.Run("missing key", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rest/v1/links", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("matching key", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rest/v1/links", "", map[string]string{"apikey": "secret"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("health is open", func(t *testing.T) {
		w := do(router, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestController_Insert(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		body       string
		prefer     string
		wantStatus int
		wantRows   int
	}{
		{
			name:       "creates rows",
			body:       `[{"id":"1","user_id":"u","raw_url":"http://a"},{"id":"2","user_id":"u","raw_url":"http://b"}]`,
			wantStatus: http.StatusCreated,
			wantRows:   2,
		},
		{
			name:       "malformed json",
			body:       `[{"id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing raw_url",
			body:       `[{"id":"1","user_id":"u"}]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "null user_id",
			body:       `[{"id":"1","user_id":null,"raw_url":"http://a"}]`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate id inside request",
			body:       `[{"id":"1","user_id":"u","raw_url":"http://a"},{"id":"1","user_id":"u","raw_url":"http://b"}]`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "batch over limit",
			opts:       Options{RejectBatchOver: 1},
			body:       `[{"id":"1","user_id":"u","raw_url":"http://a"},{"id":"2","user_id":"u","raw_url":"http://b"}]`,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "single row under limit",
			opts:       Options{RejectBatchOver: 1},
			body:       `[{"id":"1","user_id":"u","raw_url":"http://a"}]`,
			wantStatus: http.StatusCreated,
			wantRows:   1,
		},
		{
			name:       "rejected url fails whole request",
			opts:       Options{RejectURLContaining: "bad"},
			body:       `[{"id":"1","user_id":"u","raw_url":"http://a"},{"id":"2","user_id":"u","raw_url":"http://bad"}]`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, store := setupRouter(t, tt.opts)

			w := do(router, http.MethodPost, "/rest/v1/links", tt.body, map[string]string{"Content-Type": "application/json"})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRows, store.Count("links"))
		})
	}
}

func TestController_Insert_DuplicateOfStoredRow(t *testing.T) {
	router, store := setupRouter(t, Options{})
	require.NoError(t, store.Insert("links", []Row{{"id": "1"}}))

	w := do(router, http.MethodPost, "/rest/v1/links", `[{"id":"2","user_id":"u","raw_url":"http://a"},{"id":"1","user_id":"u","raw_url":"http://b"}]`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, store.Count("links"), "insert must be all-or-nothing")
}

func TestController_Insert_ReturnRepresentation(t *testing.T) {
	router, _ := setupRouter(t, Options{})

	w := do(router, http.MethodPost, "/rest/v1/links",
		`[{"id":"1","user_id":"u","raw_url":"http://a","title":null}]`,
		map[string]string{"Prefer": "return=representation"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "http://a", rows[0]["raw_url"])
	assert.Contains(t, rows[0], "title")
}

func TestMemory_TablesAreIndependent(t *testing.T) {
	store := NewMemory()

	require.NoError(t, store.Insert("links", []Row{{"id": "1"}}))
	require.NoError(t, store.Insert("archive", []Row{{"id": "1"}}))

	assert.Equal(t, 1, store.Count("links"))
	assert.Equal(t, 1, store.Count("archive"))
	assert.Len(t, store.Rows("links"), 1)
}
