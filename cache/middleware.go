package cache

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// cacheableQueries are the only query strings the public pages react to.
// Any other query is served uncached so it cannot add entries.
var cacheableQueries = map[string]bool{
	"":             true,
	"contact=sent": true,
}

// Middleware serves cached GET pages and stores successful HTML responses.
// Hits carry X-Cache: HIT and an ETag; a matching If-None-Match gets 304.
func (p *PageCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if !cacheableQueries[c.Request.URL.RawQuery] {
			c.Header("X-Cache", "BYPASS")
			c.Next()
			return
		}

		uri := c.Request.URL.RequestURI()
		if page, found := p.Get(uri); found {
			c.Header("X-Cache", "HIT")
			c.Header("ETag", page.ETag)
			if c.GetHeader("If-None-Match") == page.ETag {
				c.AbortWithStatus(http.StatusNotModified)
				return
			}
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		contentType := writer.Header().Get("Content-Type")
		if writer.Status() == http.StatusOK && strings.HasPrefix(contentType, "text/html") {
			p.Set(uri, &Page{
				Status:      http.StatusOK,
				ContentType: contentType,
				Body:        bytes.Clone(writer.body.Bytes()),
			})
		}
	}
}
