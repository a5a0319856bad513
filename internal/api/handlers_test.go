package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esphub/sensornode/internal/sensor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore is a test double that implements sensorSource.
type fakeStore struct {
	reading sensor.Reading
}

func (f *fakeStore) Snapshot() sensor.Reading { return f.reading }

// newTestEngine builds a minimal Gin engine with only the given handler — no
// middleware — for isolated handler testing.
func newTestEngine(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, h)
	return r
}

func doGet(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestSensor_ReturnsLatestReading(t *testing.T) {
	t.Parallel()

	h := &Handler{sensors: &fakeStore{reading: sensor.Reading{
		Temperature: 23.4,
		Humidity:    58.9,
		Timestamp:   1700000000,
	}}}
	engine := newTestEngine(http.MethodGet, "/api/sensor", h.Sensor)

	w := doGet(t, engine, "/api/sensor")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 23.4, body["temperature"])
	assert.Equal(t, 58.9, body["humidity"])
	assert.Equal(t, float64(1700000000), body["timestamp"])
}

func TestIndex_ServesEmbeddedPage(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	engine := newTestEngine(http.MethodGet, "/", h.Index)

	w := doGet(t, engine, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Sensor Data")
	assert.Contains(t, w.Body.String(), "/api/sensor")
}

func TestHealth_AlwaysReturns200(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	engine := newTestEngine(http.MethodGet, "/health", h.Health)

	w := doGet(t, engine, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ready    bool
		wantCode int
	}{
		{name: "bootstrap complete", ready: true, wantCode: http.StatusOK},
		{name: "bootstrap incomplete", ready: false, wantCode: http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := &Handler{ready: func() bool { return tc.ready }}
			engine := newTestEngine(http.MethodGet, "/ready", h.Ready)

			w := doGet(t, engine, "/ready")
			assert.Equal(t, tc.wantCode, w.Code)

			var body map[string]bool
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tc.ready, body["ready"])
		})
	}
}

func TestFavicon_EmptyBody(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	engine := newTestEngine(http.MethodGet, "/favicon.ico", h.Favicon)

	w := doGet(t, engine, "/favicon.ico")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, strings.TrimSpace(w.Body.String()))
}
