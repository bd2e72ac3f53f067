package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/medlibrary/internal/adapters/memory"
	"github.com/zatekoja/medlibrary/internal/catalog"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)

	router := NewRouter(memory.NewContentAdapter(c, nil), memory.NewProcedureAdapter(c, nil), nil, nil, nil)
	srv := httptest.NewServer(router.SetupRoutes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path       string
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{"/health", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, "ok", body["status"])
		}},
		{"/api/stores", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, float64(5), body["count"])
		}},
		{"/api/content/concept-brca", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, "concept-brca", body["id"])
		}},
		{"/api/content/missing-article", http.StatusNotFound, func(t *testing.T, body map[string]interface{}) {
			assert.NotEmpty(t, body["error"])
		}},
		{"/api/content/concept-brca/levels/1", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, float64(1), body["level"])
		}},
		{"/api/content/concept-brca/levels/6", http.StatusBadRequest, nil},
		{"/api/content/concept-brca/levels/x", http.StatusBadRequest, nil},
		{"/api/content/concept-dna-repair/levels/1", http.StatusNotFound, nil},
		{"/api/content/search?q=BRCA", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.GreaterOrEqual(t, body["count"], float64(1))
		}},
		{"/api/content?tag=GENETICS", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.GreaterOrEqual(t, body["count"], float64(1))
		}},
		{"/api/content/concept-brca/cross-references", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			refs := body["crossReferences"].([]interface{})
			require.Len(t, refs, 4)
			dangling := 0
			for _, r := range refs {
				if r.(map[string]interface{})["dangling"] == true {
					dangling++
				}
			}
			assert.Equal(t, 1, dangling)
		}},
		{"/api/procedures/emergency?group=airway", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, "emergency", body["store"])
			assert.Greater(t, body["count"], float64(0))
		}},
		{"/api/procedures/emergency?complexity=astronomical", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, float64(0), body["count"])
		}},
		{"/api/procedures/dental", http.StatusNotFound, nil},
		{"/api/procedures/general/no-such-procedure", http.StatusNotFound, nil},
		{"/api/procedures/surgical/search?q=", http.StatusOK, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, float64(16), body["count"])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := getJSON(t, srv, tt.path)
			assert.Equal(t, tt.wantStatus, status)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestRouter_Headers(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/stores", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.org")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, resp.Header.Get("ETag"))
	assert.Equal(t, "public, max-age=600, must-revalidate", resp.Header.Get("Cache-Control"))
}
