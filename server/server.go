// Package server assembles the HTTP router from the feature modules.
package server

import (
	"crypto/rand"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portfolio/admin"
	"portfolio/analytics"
	"portfolio/cache"
	"portfolio/config"
	"portfolio/email"
	"portfolio/logger"
	"portfolio/media"
	"portfolio/site"
	"portfolio/store"
	"portfolio/views"
)

const sessionName = "portfolio-session"

// New builds the router. analyticsDB may be nil.
func New(cfg config.Config, db, analyticsDB *gorm.DB, log logger.Logger) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	secret, err := sessionSecret(cfg, log)
	if err != nil {
		return nil, err
	}

	st := store.New(db, log)
	pages := cache.New(cfg.Cache.TTL)
	analyticsModule := analytics.NewAnalyticsModule(analyticsDB, log)
	storage := media.New(cfg, log)

	tmpl, err := views.Load(views.Funcs(storage.URL))
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log))
	router.SetHTMLTemplate(tmpl)

	sessionStore := cookie.NewStore(secret)
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.App.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, sessionStore))

	router.Static("/static", "./static")
	if local, ok := storage.(*media.LocalStorage); ok {
		router.Static(cfg.Media.URL, local.Root())
	}

	adminModule := admin.NewAdminModule(st, admin.DefaultRegistry(), pages, analyticsModule, storage, log)
	adminModule.RegisterRoutes(router)

	siteModule := site.NewSiteModule(st, email.NewEmailService(cfg), cfg.App.Domain, log)
	public := router.Group("/")
	public.Use(siteModule.Maintenance(), analyticsModule.Middleware(), pages.Middleware())
	siteModule.RegisterRoutes(public)

	return router, nil
}

func sessionSecret(cfg config.Config, log logger.Logger) ([]byte, error) {
	if cfg.App.SessionSecret != "" {
		return []byte(cfg.App.SessionSecret), nil
	}
	if cfg.App.Env == "production" {
		return nil, errors.New("SESSION_SECRET environment variable not set")
	}

	log.Warn("SESSION_SECRET not set, using a random key; sessions end on restart")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
