// Package site serves the public pages of the portfolio.
package site

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/apperror"
	"portfolio/logger"
	"portfolio/models"
	"portfolio/store"
)

// latestNews is how many news items the home page links to.
const latestNews = 3

// Notifier is told about every accepted contact message.
type Notifier interface {
	SendContactNotification(msg *models.ContactMessage) error
}

type SiteModule struct {
	store    *store.Store
	notifier Notifier
	domain   string
	log      logger.Logger
	now      func() time.Time
}

func NewSiteModule(st *store.Store, notifier Notifier, domain string, log logger.Logger) *SiteModule {
	return &SiteModule{
		store:    st,
		notifier: notifier,
		domain:   strings.TrimRight(domain, "/"),
		log:      log,
		now:      time.Now,
	}
}

func (s *SiteModule) RegisterRoutes(router gin.IRouter) {
	router.GET("/", s.index)
	router.GET("/work-experience/", s.workExperience)
	router.GET("/news/", s.news)
	router.POST("/contact/", s.contact)
	router.GET("/sitemap.xml", s.sitemap)
}

// Maintenance answers 503 with the maintenance page while the site settings
// have maintenance mode on.
func (s *SiteModule) Maintenance() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := s.store.LoadSettings(c.Request.Context())
		if err != nil {
			s.log.Error("load site settings", err)
			c.Next()
			return
		}
		if settings.MaintenanceMode {
			c.HTML(http.StatusServiceUnavailable, "main/maintenance.html", gin.H{"Settings": settings})
			c.Abort()
			return
		}
		c.Next()
	}
}

// page loads the data shared by every public template.
func (s *SiteModule) page(ctx context.Context, title string) (gin.H, error) {
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.LoadProfile(ctx)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	return gin.H{
		"Title":    title,
		"Settings": settings,
		"Profile":  profile,
	}, nil
}

func (s *SiteModule) homeData(ctx context.Context) (gin.H, error) {
	data, err := s.page(ctx, "")
	if err != nil {
		return nil, err
	}

	skills, err := store.List[models.Skill](ctx, s.store, map[string]any{"is_featured": true})
	if err != nil {
		return nil, err
	}
	projects, err := store.List[models.Project](ctx, s.store, map[string]any{"is_published": true, "is_featured": true})
	if err != nil {
		return nil, err
	}
	news, err := s.visibleNews(ctx)
	if err != nil {
		return nil, err
	}
	if len(news) > latestNews {
		news = news[:latestNews]
	}

	data["Skills"] = skills
	data["Projects"] = projects
	data["News"] = news
	data["Form"] = map[string]string{}
	data["Errors"] = map[string]string{}
	return data, nil
}

func (s *SiteModule) index(c *gin.Context) {
	data, err := s.homeData(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	data["ContactSent"] = c.Query("contact") == "sent"
	c.HTML(http.StatusOK, "main/index.html", data)
}

func (s *SiteModule) workExperience(c *gin.Context) {
	ctx := c.Request.Context()
	data, err := s.page(ctx, "Work experience")
	if err != nil {
		s.fail(c, err)
		return
	}

	experiences, err := store.List[models.Experience](ctx, s.store, nil)
	if err != nil {
		s.fail(c, err)
		return
	}
	education, err := store.List[models.Education](ctx, s.store, nil)
	if err != nil {
		s.fail(c, err)
		return
	}
	certificates, err := store.List[models.Certificate](ctx, s.store, nil)
	if err != nil {
		s.fail(c, err)
		return
	}

	data["Experiences"] = experiences
	data["Education"] = education
	data["Certificates"] = certificates
	c.HTML(http.StatusOK, "main/wie.html", data)
}

func (s *SiteModule) news(c *gin.Context) {
	ctx := c.Request.Context()
	data, err := s.page(ctx, "News")
	if err != nil {
		s.fail(c, err)
		return
	}

	news, err := s.visibleNews(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	data["News"] = news
	c.HTML(http.StatusOK, "main/news.html", data)
}

// visibleNews returns published items whose publish date has passed.
func (s *SiteModule) visibleNews(ctx context.Context) ([]models.NewsItem, error) {
	items, err := store.Published[models.NewsItem](ctx, s.store)
	if err != nil {
		return nil, err
	}
	now := s.now()
	visible := items[:0]
	for _, n := range items {
		if n.IsVisible(now) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

func (s *SiteModule) contact(c *gin.Context) {
	ctx := c.Request.Context()
	form := map[string]string{
		"name":    strings.TrimSpace(c.PostForm("name")),
		"email":   strings.TrimSpace(c.PostForm("email")),
		"subject": strings.TrimSpace(c.PostForm("subject")),
		"message": strings.TrimSpace(c.PostForm("message")),
	}

	msg := &models.ContactMessage{
		Name:      form["name"],
		Email:     form["email"],
		Subject:   form["subject"],
		Message:   form["message"],
		UserAgent: c.Request.UserAgent(),
	}
	if ip := c.ClientIP(); net.ParseIP(ip) != nil {
		msg.IPAddress = &ip
	}

	if err := s.store.Create(ctx, msg); err != nil {
		fields := apperror.FieldErrors(err)
		if fields == nil {
			s.fail(c, err)
			return
		}
		data, err := s.homeData(ctx)
		if err != nil {
			s.fail(c, err)
			return
		}
		data["Form"] = form
		data["Errors"] = fields
		c.HTML(http.StatusBadRequest, "main/index.html", data)
		return
	}

	s.log.Info("contact message received", zap.Uint("id", msg.ID), zap.String("email", msg.Email))
	if s.notifier != nil {
		if err := s.notifier.SendContactNotification(msg); err != nil {
			s.log.Error("send contact notification", err, zap.Uint("id", msg.ID))
		}
	}

	c.Redirect(http.StatusSeeOther, "/?contact=sent#contact")
}

func (s *SiteModule) sitemap(c *gin.Context) {
	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	for _, p := range []struct {
		path, freq, priority string
	}{
		{"/", "weekly", "1.0"},
		{"/work-experience/", "monthly", "0.8"},
		{"/news/", "weekly", "0.8"},
	} {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + s.domain + p.path + "</loc>\n")
		sitemap.WriteString("    <changefreq>" + p.freq + "</changefreq>\n")
		sitemap.WriteString("    <priority>" + p.priority + "</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	news, err := s.visibleNews(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	for _, n := range news {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + s.domain + "/news/#" + n.Slug + "</loc>\n")
		sitemap.WriteString("    <lastmod>" + n.UpdatedAt.Format("2006-01-02") + "</lastmod>\n")
		sitemap.WriteString("  </url>\n")
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}

func (s *SiteModule) fail(c *gin.Context, err error) {
	s.log.Error("render public page", err, zap.String("path", c.Request.URL.Path))
	c.String(apperror.ToHTTPStatus(err), http.StatusText(apperror.ToHTTPStatus(err)))
}
