package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func newRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinRecovery(logger), GinLogger(logger))
	r.GET("/ok", func(c *gin.Context) {
		c.Set(SessionKey, "abc")
		c.String(http.StatusOK, "OK")
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGinLogger_Levels(t *testing.T) {
	logger, logs := newObserved()
	r := newRouter(logger)

	serve(r, "/ok")
	serve(r, "/missing")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.EqualValues(t, 200, fields["status"])
	assert.Equal(t, "abc", fields["session_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestGinRecovery(t *testing.T) {
	logger, logs := newObserved()
	r := newRouter(logger)

	w := serve(r, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestNew(t *testing.T) {
	l, err := New(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
