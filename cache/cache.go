// Package cache keeps rendered public pages in memory.
package cache

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
)

// Page is one cached response.
type Page struct {
	Status      int
	ContentType string
	Body        []byte
	ETag        string
}

// PageCache maps request URIs to rendered pages. A nil *PageCache is a
// valid, always-empty cache.
type PageCache struct {
	store *gocache.Cache
}

func New(ttl time.Duration) *PageCache {
	return &PageCache{store: gocache.New(ttl, 2*ttl)}
}

// Key returns the cache key of a request URI.
func Key(uri string) string {
	return generateHash(uri)
}

// generateHash generates an xxHash hex digest for the given string
func generateHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}

func (p *PageCache) Get(uri string) (*Page, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.store.Get(Key(uri))
	if !ok {
		return nil, false
	}
	return v.(*Page), true
}

func (p *PageCache) Set(uri string, page *Page) {
	if p == nil {
		return
	}
	if page.ETag == "" {
		page.ETag = ETag(page.Body)
	}
	p.store.SetDefault(Key(uri), page)
}

// Flush drops every cached page.
func (p *PageCache) Flush() {
	if p == nil {
		return
	}
	p.store.Flush()
}

func (p *PageCache) Len() int {
	if p == nil {
		return 0
	}
	return p.store.ItemCount()
}
