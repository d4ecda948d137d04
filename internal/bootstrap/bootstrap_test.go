package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/curriculum/planner/internal/app/repositories/repotest"
	appServices "github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/config"
	"github.com/curriculum/planner/internal/importer"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.AllowedOrigins = []string{"https://planner.example.edu"}
	cfg.JWT.Secret = "bootstrap-test-secret"
	cfg.JWT.AccessTokenExpiration = "5m"
	cfg.JWT.RefreshTokenExpiration = "not-a-duration"
	cfg.JWT.Issuer = "curriculum-test"
	return cfg
}

func newTestRouter(t *testing.T) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Import.UploadDir = t.TempDir()
	store := repotest.NewStore()
	stores := appServices.Stores{Users: store, Programs: store, Courses: store, Prerequisites: store, Progress: store}

	deps, err := BuildDependenciesFromStores(cfg, stores, nil, importer.New(store, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	return WithCORS(cfg, router)
}

func TestNewJWTService_Durations(t *testing.T) {
	svc := NewJWTService(testConfig())
	assert.Equal(t, 5*time.Minute, svc.AccessTokenTTL())
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	handler := newTestRouter(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ProtectedRouteNeedsToken(t *testing.T) {
	handler := newTestRouter(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWithCORS_Preflight(t *testing.T) {
	handler := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/programs", nil)
	req.Header.Set("Origin", "https://planner.example.edu")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://planner.example.edu", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/programs", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
