package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syslex/artitracker/pkg/publish"
	"github.com/syslex/artitracker/pkg/store"
)

const testReport = `{"artifact":{"group":"com.example","name":"app","version":"1.0.0"},"generatedAt":"2024-12-22T22:37:14Z","dependencies":[{"group":"junit","name":"junit","version":"4.13.2","inclusion":"DEPENDENCY"}]}`

func newTestServer(t *testing.T, keys ...string) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	h, err := NewHandler(Options{
		Store:    st,
		APIKeys:  keys,
		Gatherer: prometheus.NewRegistry(),
		Logger:   log.New(io.Discard),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, st
}

func post(t *testing.T, url, key, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/api/v1/reports", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(publish.APIKeyHeader, key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateAndGetReport(t *testing.T) {
	srv, _ := newTestServer(t, "secret")

	resp := post(t, srv.URL, "secret", testReport)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rc := decode[receipt](t, resp)
	assert.Equal(t, "com.example:app", rc.Coordinate)
	assert.NotEmpty(t, rc.ID)
	assert.Equal(t, "/api/v1/reports/"+rc.ID, resp.Header.Get("Location"))

	got, err := http.Get(srv.URL + "/api/v1/reports/" + rc.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	rec := decode[store.Record](t, got)
	assert.Equal(t, rc.ID, rec.ID)
	require.NotNil(t, rec.Report)
	require.Len(t, rec.Report.Dependencies, 1)
	assert.Equal(t, "junit", *rec.Report.Dependencies[0].Name)
}

func TestCreateReportAuth(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantStatus int
		wantCode   string
	}{
		{"missing key", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong key", "guess", http.StatusForbidden, "FORBIDDEN"},
		{"second key", "other", http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, "secret", "other")
			resp := post(t, srv.URL, tt.key, testReport)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[errorBody](t, resp).Error)
			}
		})
	}
}

func TestCreateReportOpenWithoutKeys(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := post(t, srv.URL, "", testReport)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateReportRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<project/>"},
		{"unknown inclusion", `{"artifact":{"name":"app"},"dependencies":[{"name":"x","inclusion":"OPTIONAL"}]}`},
		{"no artifact name", `{"generatedAt":"2024-12-22T22:37:14Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, "secret")
			resp := post(t, srv.URL, "secret", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_REPORT", decode[errorBody](t, resp).Error)
		})
	}
}

func TestGetReportErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"unknown id", "3f1c2a4e-8d7b-4c1e-9a0f-2b6d5e4c3a21", http.StatusNotFound},
		{"malformed id", "not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/v1/reports/" + tt.id)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestListReports(t *testing.T) {
	srv, _ := newTestServer(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, post(t, srv.URL, "", testReport).StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/v1/artifacts/com.example:app/reports?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]store.Record](t, resp), 2)

	empty, err := http.Get(srv.URL + "/api/v1/artifacts/org.other:lib/reports")
	require.NoError(t, err)
	defer empty.Body.Close()
	body, _ := io.ReadAll(empty.Body)
	assert.Equal(t, "[]\n", string(body))

	bad, err := http.Get(srv.URL + "/api/v1/artifacts/com.example:app/reports?limit=-1")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestNewHandlerRequiresStore(t *testing.T) {
	_, err := NewHandler(Options{})
	assert.Error(t, err)
}
