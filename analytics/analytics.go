package analytics

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"portfolio/logger"
)

const (
	visitorCookie = "portfolio_visitor_id"
	// visitThrottle is how long repeat views of a page by one visitor are
	// ignored.
	visitThrottle = 30 * time.Minute
)

// PageVisit is one counted view of a public page.
type PageVisit struct {
	ID        uint      `gorm:"primaryKey"`
	Path      string    `gorm:"size:200;not null;index"`
	CookieID  string    `gorm:"size:36;not null;index"`
	IP        string    `gorm:"size:45;not null"`
	Language  *string   `gorm:"size:35"`
	Browser   *string   `gorm:"size:20"`
	CreatedAt time.Time `gorm:"index"`
}

// AnalyticsModule records page visits into its own database. A nil module
// records nothing and reports no visits.
type AnalyticsModule struct {
	db  *gorm.DB
	log logger.Logger
	now func() time.Time
}

func NewAnalyticsModule(db *gorm.DB, log logger.Logger) *AnalyticsModule {
	if db == nil {
		return nil
	}

	if err := db.AutoMigrate(&PageVisit{}); err != nil {
		log.Error("migrate page_visits", err)
		return nil
	}

	log.Info("analytics module initialized")
	return &AnalyticsModule{db: db, log: log, now: time.Now}
}

// Middleware counts the view after the page has been served.
func (a *AnalyticsModule) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		cookieID := a.getOrCreateCookieID(c)
		c.Next()

		if c.Writer.Status() < 400 {
			a.TrackVisit(c, c.FullPath(), cookieID)
		}
	}
}

// TrackVisit stores a visit of path unless the same visitor viewed it within
// the last thirty minutes.
func (a *AnalyticsModule) TrackVisit(c *gin.Context, path, cookieID string) {
	if a == nil {
		return
	}
	if path == "" {
		path = c.Request.URL.Path
	}

	now := a.now()
	var recent int64
	err := a.db.WithContext(c.Request.Context()).Model(&PageVisit{}).
		Where("cookie_id = ? AND path = ? AND created_at > ?", cookieID, path, now.Add(-visitThrottle)).
		Count(&recent).Error
	if err != nil {
		a.log.Error("check recent visit", err, zap.String("path", path))
		return
	}
	if recent > 0 {
		return
	}

	visit := PageVisit{
		Path:      path,
		CookieID:  cookieID,
		IP:        c.ClientIP(),
		Language:  extractLanguage(c.GetHeader("Accept-Language")),
		Browser:   extractBrowser(c.Request.UserAgent()),
		CreatedAt: now,
	}
	if err := a.db.WithContext(c.Request.Context()).Create(&visit).Error; err != nil {
		a.log.Error("save page visit", err, zap.String("path", path))
	}
}

func (a *AnalyticsModule) getOrCreateCookieID(c *gin.Context) string {
	if cookie, err := c.Cookie(visitorCookie); err == nil && cookie != "" {
		return cookie
	}

	cookieID := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookie, cookieID, 60*60*24*365*2, "/", "", false, true)
	return cookieID
}

func extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string

	// Order matters: Edge and Opera also claim to be Chrome.
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		browser = "Internet Explorer"
	default:
		browser = "Other"
	}
	return &browser
}

// extractLanguage returns the first tag of an Accept-Language header.
func extractLanguage(acceptLang string) *string {
	if acceptLang == "" {
		return nil
	}
	lang := strings.TrimSpace(strings.Split(acceptLang, ",")[0])
	lang = strings.Split(lang, ";")[0]
	if lang == "" {
		return nil
	}
	return &lang
}

// PageCount is the number of visits of one path.
type PageCount struct {
	Path  string
	Count int64
}

// VisitsByPage returns visit counts per path over the last days days, most
// visited first.
func (a *AnalyticsModule) VisitsByPage(days int) []PageCount {
	if a == nil {
		return []PageCount{}
	}

	var results []PageCount
	err := a.db.Model(&PageVisit{}).
		Select("path, COUNT(*) AS count").
		Where("created_at >= ?", a.now().AddDate(0, 0, -days)).
		Group("path").
		Order("count DESC, path").
		Scan(&results).Error
	if err != nil {
		a.log.Error("count visits by page", err)
		return []PageCount{}
	}
	return results
}

// TotalVisits returns the number of visits over the last days days.
func (a *AnalyticsModule) TotalVisits(days int) int64 {
	if a == nil {
		return 0
	}
	var count int64
	err := a.db.Model(&PageVisit{}).Where("created_at >= ?", a.now().AddDate(0, 0, -days)).Count(&count).Error
	if err != nil {
		a.log.Error("count visits", err)
		return 0
	}
	return count
}
