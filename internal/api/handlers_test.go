package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/runtime"
	"github.com/mjvo/sketchbridge/internal/sketch"
	"github.com/mjvo/sketchbridge/internal/transpile"
)

func newTestRouter(t *testing.T) (*gin.Engine, *sketch.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.NewNop()
	tr := transpile.New(nil, log)
	rt := runtime.New(runtime.Config{Timeout: 2 * time.Second}, nil, log)
	manager := sketch.NewManager(sketch.Config{
		AllowedOrigins: []string{"http://localhost"},
	}, tr, rt, log, nil)
	h := NewHandlers(manager, tr, log)

	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/transpile", h.Transpile)
	router.POST("/sketches", h.Mount)
	router.GET("/sketches", h.List)
	router.GET("/sketches/:id", h.Get)
	router.POST("/sketches/:id/run", h.Run)
	router.DELETE("/sketches/:id", h.Unmount)
	return router, manager
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestTranspileEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/transpile",
		`{"source": "function setup() { createCanvas(400, 400); }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	code, _ := body["code"].(string)
	assert.Contains(t, code, "p.setup")
	assert.Contains(t, code, "p.createCanvas")
}

func TestTranspileEndpointSyntaxError(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/transpile",
		`{"source": "function setup( {"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, body["error"])
	assert.GreaterOrEqual(t, body["line"], 1.0)
}

func TestTranspileEndpointBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)
	w, _ := doJSON(t, router, http.MethodPost, "/transpile", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSketchLifecycleOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/sketches",
		`{"source": "function setup() { createCanvas(120, 80); console.log(\"hi\"); }"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created, _ := body["sketch"].(map[string]any)
	require.NotNil(t, created)
	sid, _ := created["id"].(string)
	require.NotEmpty(t, sid)
	assert.Equal(t, "mounted", created["state"])

	w, body = doJSON(t, router, http.MethodPost, "/sketches/"+sid+"/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	run, _ := body["run"].(map[string]any)
	require.NotNil(t, run)
	assert.Equal(t, true, run["completed"])
	canvas, _ := run["canvas"].(map[string]any)
	require.NotNil(t, canvas)
	assert.Equal(t, 120.0, canvas["width"])
	assert.Equal(t, 80.0, canvas["height"])

	w, body = doJSON(t, router, http.MethodGet, "/sketches/"+sid, "")
	require.Equal(t, http.StatusOK, w.Code)
	got, _ := body["sketch"].(map[string]any)
	assert.Equal(t, "complete", got["state"])

	w, _ = doJSON(t, router, http.MethodDelete, "/sketches/"+sid, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/sketches/"+sid, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunUnknownSketch(t *testing.T) {
	router, _ := newTestRouter(t)
	w, _ := doJSON(t, router, http.MethodPost, "/sketches/sk_missing/run", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunSyntaxErrorOverHTTP(t *testing.T) {
	router, manager := newTestRouter(t)
	s := manager.Mount(`let x = ;`)

	w, body := doJSON(t, router, http.MethodPost, "/sketches/"+s.ID.String()+"/run", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, body["error"])
}
