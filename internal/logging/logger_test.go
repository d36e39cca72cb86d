package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true)

	log.Debug("dbg", "a", 1)
	log.Info("inf", "b", 2)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=dbg")
	assert.Contains(t, out, "b=2")
}

func TestLogger_ProductionWritesJSONAndSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Debug("hidden")
	log.Warn("visible", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"visible"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true).WithFields(map[string]any{"request_id": "abc"})

	log.Info("hello")

	assert.Contains(t, buf.String(), "request_id=abc")
}

func TestRequestLogger_StoresLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, true)

	var fromCtx *Logger
	h := middleware.RequestID(RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetLoggerFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.NotNil(t, fromCtx)
	assert.NotSame(t, base, fromCtx)

	out := buf.String()
	assert.Contains(t, out, "request started")
	assert.Contains(t, out, "path=/missing")
	assert.True(t, strings.Contains(out, "level=WARN") && strings.Contains(out, "status=404"), out)
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	assert.NotNil(t, GetLoggerFromContext(context.Background()))
}
