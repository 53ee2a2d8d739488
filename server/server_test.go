package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/common"
	"portfolio/config"
	"portfolio/database"
	"portfolio/logger"
)

func testConfig(t *testing.T) config.Config {
	var cfg config.Config
	cfg.App.Env = "test"
	cfg.App.Domain = "http://localhost:8080"
	cfg.App.SessionSecret = "test-secret"
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.Media.Root = t.TempDir()
	cfg.Media.URL = "/media/"
	cfg.Cache.TTL = time.Minute
	return cfg
}

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	db, err := common.ConnectDb(cfg, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, logger.NewNop()))

	analyticsDB, err := common.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	router, err := New(cfg, db, analyticsDB, logger.NewNop())
	require.NoError(t, err)
	return router
}

func TestPublicPagesAreCached(t *testing.T) {
	router := setupServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := setupServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/news/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestAdminRequiresLogin(t *testing.T) {
	router := setupServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/skill/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?next=/admin/skill/", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionSecretRequiredInProduction(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.Env = "production"
	cfg.App.SessionSecret = ""

	_, err := sessionSecret(cfg, logger.NewNop())
	assert.Error(t, err)

	cfg.App.Env = "development"
	key, err := sessionSecret(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
