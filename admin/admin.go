// Package admin serves the content management console: a login, a dashboard
// and one generic CRUD engine driven by the entity Registry.
package admin

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/analytics"
	"portfolio/apperror"
	"portfolio/cache"
	"portfolio/logger"
	"portfolio/media"
	"portfolio/models"
	"portfolio/store"
)

const (
	sessionUserKey = "admin_user_id"
	// statsDays is the window of the dashboard visit counts.
	statsDays = 30
)

type AdminModule struct {
	store     *store.Store
	registry  *Registry
	pages     *cache.PageCache
	analytics *analytics.AnalyticsModule
	media     media.Storage
	log       logger.Logger
}

func NewAdminModule(
	st *store.Store,
	registry *Registry,
	pages *cache.PageCache,
	analyticsModule *analytics.AnalyticsModule,
	storage media.Storage,
	log logger.Logger,
) *AdminModule {
	return &AdminModule{
		store:     st,
		registry:  registry,
		pages:     pages,
		analytics: analyticsModule,
		media:     storage,
		log:       log,
	}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/admin/login", a.loginPage)
	router.POST("/admin/login", a.loginPost)
	router.GET("/admin/logout", a.logout)

	adminGroup := router.Group("/admin")
	adminGroup.Use(a.requireAuth)
	{
		adminGroup.GET("/", a.dashboard)
		adminGroup.POST("/cache/clear", a.clearCache)

		adminGroup.GET("/:entity/", a.list)
		adminGroup.POST("/:entity/", a.listUpdate)
		adminGroup.GET("/:entity/add", a.addForm)
		adminGroup.POST("/:entity/add", a.addPost)
		adminGroup.GET("/:entity/:id", a.editForm)
		adminGroup.POST("/:entity/:id", a.editPost)
		adminGroup.POST("/:entity/:id/delete", a.deletePost)
	}
}

func (a *AdminModule) requireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get(sessionUserKey)

	if userID == nil {
		c.Redirect(http.StatusFound, "/admin/login?next="+c.Request.URL.Path)
		c.Abort()
		return
	}

	c.Set(sessionUserKey, userID)
	c.Next()
}

type entityStat struct {
	Entity *EntityAdmin
	Count  int64
	CanAdd bool
}

func (a *AdminModule) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var stats []entityStat
	for _, e := range a.registry.All() {
		n, err := a.store.Count(ctx, e.New())
		if err != nil {
			a.fail(c, err)
			return
		}
		canAdd, err := a.canAdd(ctx, e)
		if err != nil {
			a.fail(c, err)
			return
		}
		stats = append(stats, entityStat{Entity: e, Count: n, CanAdd: canAdd})
	}

	unread, err := a.store.CountWhere(ctx, &models.ContactMessage{}, map[string]any{"status": models.StatusNew})
	if err != nil {
		a.fail(c, err)
		return
	}

	a.render(c, http.StatusOK, "admin/index.html", gin.H{
		"Title":       "Site administration",
		"Stats":       stats,
		"Unread":      unread,
		"Visits":      a.analytics.VisitsByPage(statsDays),
		"TotalVisits": a.analytics.TotalVisits(statsDays),
		"StatsDays":   statsDays,
		"CachedPages": a.pages.Len(),
	})
}

func (a *AdminModule) clearCache(c *gin.Context) {
	a.pages.Flush()
	a.log.Info("page cache cleared")
	a.flash(c, "Page cache cleared.")
	c.Redirect(http.StatusFound, "/admin/")
}

// render adds the data every console page needs.
func (a *AdminModule) render(c *gin.Context, status int, name string, data gin.H) {
	data["Entities"] = a.registry.All()
	data["Flashes"] = a.flashes(c)
	c.HTML(status, name, data)
}

func (a *AdminModule) renderError(c *gin.Context, status int, message string) {
	a.render(c, status, "admin/error.html", gin.H{
		"Title": http.StatusText(status),
		"Error": message,
	})
}

// fail renders err with the status its kind maps to.
func (a *AdminModule) fail(c *gin.Context, err error) {
	status := apperror.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("admin request failed", err, zap.String("path", c.Request.URL.Path))
		a.renderError(c, status, "Something went wrong. The error has been logged.")
		return
	}
	a.renderError(c, status, err.Error())
}

func (a *AdminModule) flash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	if err := session.Save(); err != nil {
		a.log.Warn("save flash", zap.Error(err))
	}
}

func (a *AdminModule) flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		a.log.Warn("clear flashes", zap.Error(err))
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
