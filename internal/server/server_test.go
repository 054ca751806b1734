package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatescout/internal/config"
	"estatescout/internal/handlers"
	"estatescout/internal/repository/memory"
	"estatescout/internal/security"
	"estatescout/internal/service"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := security.NewTokenService("access-secret-0123456789", "refresh-secret-0123456789")
	require.NoError(t, err)

	log := zerolog.Nop()
	stores := memory.NewStores()
	set := handlers.NewHandlerSet(log, "test", handlers.Services{
		Auth:       service.NewAuthService(stores.Users, tokens, security.MinHashCost, log),
		Users:      service.NewUserService(stores.Users, stores.Properties, nil, log),
		Properties: service.NewPropertyService(stores.Properties, stores.Users, nil, nil, nil, log),
	}, handlers.Checks{Database: stores.Ping})

	return NewEngine(&config.AppConfig{Environment: "test"}, log, set)
}

func TestEngineServesAPIWithRequestID(t *testing.T) {
	engine := newEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
}

func TestEngineCompressesResponses(t *testing.T) {
	engine := newEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestEngineUnknownRoute(t *testing.T) {
	engine := newEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, rec.Body.String())
}
