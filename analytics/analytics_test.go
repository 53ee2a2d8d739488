package analytics

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
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio/logger"
)

func setupAnalytics(t *testing.T) (*AnalyticsModule, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	a := NewAnalyticsModule(db, logger.NewNop())
	require.NotNil(t, a)

	r := gin.New()
	r.Use(a.Middleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "home") })
	r.GET("/news/", func(c *gin.Context) { c.String(http.StatusOK, "news") })
	return a, r
}

func visit(r http.Handler, path, cookie string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 Firefox/120.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: visitorCookie, Value: cookie})
	}
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_SetsVisitorCookie(t *testing.T) {
	_, r := setupAnalytics(t)

	w := visit(r, "/", "")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, visitorCookie, cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}

func TestTrackVisit_Throttled(t *testing.T) {
	a, r := setupAnalytics(t)
	now := time.Now()
	a.now = func() time.Time { return now }

	visit(r, "/", "visitor-1")
	visit(r, "/", "visitor-1")
	visit(r, "/news/", "visitor-1")
	visit(r, "/", "visitor-2")

	assert.Equal(t, int64(3), a.TotalVisits(30))

	a.now = func() time.Time { return now.Add(31 * time.Minute) }
	visit(r, "/", "visitor-1")

	counts := a.VisitsByPage(30)
	require.Len(t, counts, 2)
	assert.Equal(t, PageCount{Path: "/", Count: 3}, counts[0])
	assert.Equal(t, PageCount{Path: "/news/", Count: 1}, counts[1])

	var v PageVisit
	require.NoError(t, a.db.First(&v).Error)
	require.NotNil(t, v.Browser)
	assert.Equal(t, "Firefox", *v.Browser)
	require.NotNil(t, v.Language)
	assert.Equal(t, "en-US", *v.Language)
}

func TestNilModule(t *testing.T) {
	assert.Nil(t, NewAnalyticsModule(nil, logger.NewNop()))

	var a *AnalyticsModule
	assert.Empty(t, a.VisitsByPage(30))
	assert.Zero(t, a.TotalVisits(30))
}

func TestExtractBrowser(t *testing.T) {
	tests := map[string]string{
		"Mozilla/5.0 Chrome/120.0 Safari/537.36 Edg/120.0": "Edge",
		"Mozilla/5.0 Chrome/120.0 Safari/537.36 OPR/105":   "Opera",
		"Mozilla/5.0 Chrome/120.0 Safari/537.36":           "Chrome",
		"Mozilla/5.0 Version/17.0 Safari/605.1.15":         "Safari",
		"curl/8.0":                                         "Other",
	}
	for ua, want := range tests {
		got := extractBrowser(ua)
		require.NotNil(t, got)
		assert.Equal(t, want, *got, ua)
	}
	assert.Nil(t, extractBrowser(""))
}

func TestCounts_LogStorageErrors(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	core, logs := observer.New(zap.ErrorLevel)
	a := NewAnalyticsModule(db, logger.New(zap.New(core)))
	require.NotNil(t, a)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Zero(t, a.TotalVisits(30))
	assert.Empty(t, a.VisitsByPage(30))

	assert.Equal(t, 1, logs.FilterMessage("count visits").Len())
	assert.Equal(t, 1, logs.FilterMessage("count visits by page").Len())
}
