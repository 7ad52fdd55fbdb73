package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Qualify/internal/assess"
	"github.com/MikeSquared-Agency/Qualify/internal/config"
	"github.com/MikeSquared-Agency/Qualify/internal/store"
)

// ---------- mocks ----------

type mockStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*store.Draft
}

func newMockStore() *mockStore {
	return &mockStore{drafts: make(map[uuid.UUID]*store.Draft)}
}

func (m *mockStore) SaveDraft(_ context.Context, d *store.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if old, ok := m.drafts[d.ID]; ok {
		d.CreatedAt = old.CreatedAt
	} else {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	cp := *d
	m.drafts[d.ID] = &cp
	return nil
}

func (m *mockStore) GetDraft(_ context.Context, id uuid.UUID) (*store.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *mockStore) ListDrafts(_ context.Context, limit int) ([]*store.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Draft
	for _, d := range m.drafts {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockStore) AllDrafts(_ context.Context) ([]*store.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*store.Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) DeleteDraft(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}

func (m *mockStore) RestoreDrafts(_ context.Context, drafts []*store.Draft) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range drafts {
		cp := *d
		m.drafts[d.ID] = &cp
	}
	return len(drafts), nil
}

func (m *mockStore) Close() error { return nil }

type mockHermes struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockHermes) Publish(subject string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}
func (m *mockHermes) Close() {}

// ---------- helpers ----------

type testServer struct {
	handler http.Handler
	store   *mockStore
	hermes  *mockHermes
}

func newTestServer(t *testing.T, withStore bool) *testServer {
	t.Helper()
	cfg := config.Defaults()
	cfg.Scoring.Language = "en"
	cfg.Server.RateLimitPerMinute = 0
	cfg.Server.AdminToken = "secret"

	engine, err := cfg.Engine()
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := &mockHermes{}
	a := assess.New(engine, h, logger)

	ts := &testServer{hermes: h}
	var s store.Store
	if withStore {
		ts.store = newMockStore()
		s = ts.store
	}
	ts.handler = NewRouter(a, s, h, cfg, logger)
	return ts
}

func (ts *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func applicationBody() map[string]any {
	return map[string]any{
		"firstName":      "Amar",
		"lastName":       "Said",
		"university":     "Mila",
		"specialization": "sciences",
		"teachingYears":  "5",
		"categoryAFirst": "4",
	}
}

// ---------- calculation routes ----------

func TestStatus(t *testing.T) {
	ts := newTestServer(t, false)

	for _, path := range []string{"/", "/test"} {
		w := ts.do("GET", path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)

		body := decode(t, w)
		assert.Equal(t, "online", body["status"])
		assert.Equal(t, serviceName, body["service"])
		assert.Equal(t, "1.0.0", body["version"])
		assert.NotEmpty(t, body["endpoints"])
		assert.NotEmpty(t, body["timestamp"])
	}
}

func TestCalculate(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("POST", "/calculate", applicationBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.NotEmpty(t, w.Header().Get("X-Calculated-At"))
	id := w.Header().Get("X-Calculation-ID")
	require.NotEmpty(t, id)

	body := decode(t, w)
	assert.Equal(t, 360.0, body["totalPoints"])
	assert.Equal(t, true, body["eligible"])
	assert.Equal(t, 5.0, body["teachingYears"])
	assert.Equal(t, true, body["hasRequiredPublication"])
	assert.NotEmpty(t, body["calculatedAt"])

	breakdown := body["breakdown"].([]any)
	require.Len(t, breakdown, 1)
	assert.Equal(t, "categoryA", breakdown[0].(map[string]any)["key"])

	assert.Equal(t, []string{"qualify.calculation." + id + ".completed"}, ts.hermes.subjects)
}

func TestCalculateValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(map[string]any)
		wantCode    string
		wantField   string
		wantDetails string
	}{
		{
			name:        "missing last name",
			mutate:      func(b map[string]any) { delete(b, "lastName") },
			wantCode:    "missing-name",
			wantDetails: "first name and last name are required",
		},
		{
			name:        "too few teaching years",
			mutate:      func(b map[string]any) { b["teachingYears"] = "2" },
			wantCode:    "insufficient-teaching-years",
			wantDetails: "at least 3 teaching years are required",
		},
		{
			name:        "non-numeric strict field",
			mutate:      func(b map[string]any) { b["guidedWorks"] = "three" },
			wantCode:    "invalid-numeric-field",
			wantField:   "guidedWorks",
			wantDetails: "the value of guidedWorks is not a valid number",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false)
			body := applicationBody()
			tt.mutate(body)

			w := ts.do("POST", "/calculate", body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			resp := decode(t, w)
			assert.Equal(t, "validation failed", resp["error"])
			assert.Equal(t, tt.wantCode, resp["code"])
			assert.Equal(t, tt.wantField, resp["field"])
			assert.Equal(t, tt.wantDetails, resp["details"])
			assert.NotEmpty(t, resp["timestamp"])
			assert.Empty(t, w.Header().Get("X-Calculation-ID"))
		})
	}
}

func TestMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"invalid json", `{"firstName": `},
		{"empty body", ""},
		{"json array", `[1, 2]`},
		{"json null", `null`},
		{"boolean field", map[string]any{"firstName": true}},
		{"nested field", map[string]any{"guidedWorks": map[string]any{"n": 1}}},
	}
	for _, path := range []string{"/calculate", "/preview", "/export-html", "/export-json"} {
		for _, tt := range tests {
			t.Run(path+" "+tt.name, func(t *testing.T) {
				ts := newTestServer(t, false)
				w := ts.do("POST", path, tt.body)
				require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

				resp := decode(t, w)
				assert.Equal(t, "invalid request", resp["error"])
				assert.NotEmpty(t, resp["message"])
				assert.NotEmpty(t, resp["timestamp"])
			})
		}
	}
}

func TestPreviewIsLenient(t *testing.T) {
	ts := newTestServer(t, false)
	body := map[string]any{
		"teachingYears":  "1",
		"guidedWorks":    "three",
		"lessonsPerYear": "60",
	}

	w := ts.do("POST", "/preview", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	result := resp["result"].(map[string]any)
	assert.Equal(t, 45.0, result["totalPoints"])
	assert.Equal(t, false, result["eligible"])

	notices := resp["notices"].([]any)
	require.Len(t, notices, 1)
	assert.Equal(t, "lessonsPerYear", notices[0].(map[string]any)["field"])
	assert.Empty(t, ts.hermes.subjects)
}

func TestExportHTML(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("POST", "/export-html", applicationBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	filename := resp["filename"].(string)
	assert.True(t, strings.HasPrefix(filename, "qualification_report_Amar_Said_"), filename)
	assert.True(t, strings.HasSuffix(filename, ".html"), filename)

	html := resp["html"].(string)
	assert.Contains(t, html, "Amar Said")
	assert.Contains(t, html, "<html")
	assert.NotEmpty(t, resp["generatedAt"])
}

func TestExportJSON(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("POST", "/export-json", applicationBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "qualification_Amar_Said.json")

	doc := decode(t, w)
	personal := doc["personalInfo"].(map[string]any)
	assert.Equal(t, "Amar Said", personal["fullName"])

	results := doc["calculatedResults"].(map[string]any)
	assert.Equal(t, 360.0, results["totalPoints"])

	raw := doc["rawInputData"].(map[string]any)
	assert.Equal(t, "4", raw["categoryAFirst"])
	pubs := raw["publications"].(map[string]any)
	assert.Equal(t, 4.0, pubs["a"].(map[string]any)["firstAuthor"])
}

func TestPointTable(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("GET", "/api/v1/point-table", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "en", resp["language"])
	thresholds := resp["thresholds"].(map[string]any)
	assert.Equal(t, 350.0, thresholds["minTotalPoints"])

	rules := resp["rules"].(map[string]any)
	lessons := rules["lessonsPerYear"].(map[string]any)
	assert.Equal(t, 15.0, lessons["pointsPerUnit"])
	assert.Equal(t, 45.0, lessons["cap"])
	assert.Nil(t, rules["categoryAPlus"].(map[string]any)["cap"])
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("GET", "/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "endpoint not found", resp["error"])
	assert.Contains(t, resp["available_endpoints"], "/calculate")
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("GET", "/calculate", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "method not allowed", resp["error"])
	assert.Equal(t, []any{"POST", "OPTIONS"}, resp["allowed_methods"])
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("OPTIONS", "/calculate", nil,
		"Origin", "https://example.org",
		"Access-Control-Request-Method", "POST",
	)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// ---------- drafts ----------

func TestDraftsDisabledWithoutStore(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do("GET", "/api/v1/drafts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftLifecycle(t *testing.T) {
	ts := newTestServer(t, true)

	// create
	w := ts.do("POST", "/api/v1/drafts", map[string]any{
		"label": "before submission",
		"data":  map[string]any{"firstName": "Amar", "guidedWorks": "2"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	// get
	w = ts.do("GET", "/api/v1/drafts/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "before submission", got["label"])
	assert.Equal(t, "Amar", got["data"].(map[string]any)["firstName"])

	// update
	w = ts.do("PUT", "/api/v1/drafts/"+id, map[string]any{
		"data": map[string]any{"firstName": "Amar", "guidedWorks": "3"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, decode(t, w)["id"])

	// list
	w = ts.do("GET", "/api/v1/drafts?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "3", list[0]["data"].(map[string]any)["guidedWorks"])

	// delete
	w = ts.do("DELETE", "/api/v1/drafts/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do("GET", "/api/v1/drafts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do("DELETE", "/api/v1/drafts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{
		"qualify.draft." + id + ".saved",
		"qualify.draft." + id + ".saved",
		"qualify.draft." + id + ".deleted",
	}, ts.hermes.subjects)
}

func TestDraftErrors(t *testing.T) {
	ts := newTestServer(t, true)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"get invalid id", "GET", "/api/v1/drafts/not-a-uuid", nil, http.StatusBadRequest},
		{"get missing", "GET", "/api/v1/drafts/" + uuid.NewString(), nil, http.StatusNotFound},
		{"update missing", "PUT", "/api/v1/drafts/" + uuid.NewString(), map[string]any{"data": map[string]any{}}, http.StatusNotFound},
		{"delete invalid id", "DELETE", "/api/v1/drafts/xyz", nil, http.StatusBadRequest},
		{"bad limit", "GET", "/api/v1/drafts?limit=many", nil, http.StatusBadRequest},
		{"bad json", "POST", "/api/v1/drafts", `{"data":`, http.StatusBadRequest},
		{"bad shape", "POST", "/api/v1/drafts", map[string]any{"data": map[string]any{"firstName": []int{1}}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestDraftBackupRestore(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.do("POST", "/api/v1/drafts", map[string]any{
		"data": map[string]any{"firstName": "Amar"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do("GET", "/api/v1/admin/drafts/backup", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do("GET", "/api/v1/admin/drafts/backup", nil, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, w.Code)
	backup := w.Body.String()

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(backup), &doc))
	assert.Equal(t, backupVersion, doc["version"])
	assert.Len(t, doc["drafts"], 1)

	// Restore into an empty store.
	fresh := newTestServer(t, true)
	w = fresh.do("POST", "/api/v1/admin/drafts/restore", backup, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1.0, decode(t, w)["restored"])
	assert.Len(t, fresh.store.drafts, 1)
}

func TestDraftBackupIncludesEveryDraft(t *testing.T) {
	ts := newTestServer(t, true)

	const n = 1005
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		id := uuid.New()
		ts.store.drafts[id] = &store.Draft{ID: id, Data: map[string]any{}, CreatedAt: at, UpdatedAt: at}
	}

	w := ts.do("GET", "/api/v1/admin/drafts/backup", nil, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, w.Code)
	var doc backupDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.Drafts, n)

	fresh := newTestServer(t, true)
	w = fresh.do("POST", "/api/v1/admin/drafts/restore", w.Body.String(), "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, fresh.store.drafts, n)
}

func TestDraftListLimit(t *testing.T) {
	ts := newTestServer(t, true)
	for i := 0; i < 3; i++ {
		w := ts.do("POST", "/api/v1/drafts", map[string]any{"data": map[string]any{}})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.do("GET", "/api/v1/drafts?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.Draft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = ts.do("GET", "/api/v1/drafts?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftRestoreRejects(t *testing.T) {
	ts := newTestServer(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"wrong version", `{"version":"9","drafts":[]}`},
		{"missing id", `{"version":"1","drafts":[{"data":{}}]}`},
		{"null draft", `{"version":"1","drafts":[null]}`},
		{"bad data", `{"version":"1","drafts":[{"id":"` + uuid.NewString() + `","data":{"firstName":{"x":1}}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do("POST", "/api/v1/admin/drafts/restore", tt.body, "Authorization", "Bearer secret")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, ts.store.drafts)
}

func TestMetricsRouter(t *testing.T) {
	h := NewMetricsRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
