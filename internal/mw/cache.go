package mw

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Cache"

// page is a captured 2xx response.
type page struct {
	status int
	header http.Header
	body   []byte
}

func (p page) replay(w gin.ResponseWriter) {
	dst := w.Header()
	for k, v := range p.header {
		dst[k] = v
	}
	dst.Set(CacheHeader, "HIT")
	w.WriteHeader(p.status)
	_, _ = w.Write(p.body)
}

// teeWriter copies everything the handler writes into buf.
type teeWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func (w *teeWriter) capture() (page, bool) {
	status := w.Status()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return page{}, false
	}
	header := w.Header().Clone()
	header.Del(CacheHeader)
	return page{status: status, header: header, body: bytes.Clone(w.buf.Bytes())}, true
}

func wantsFresh(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Cache-Control"), "no-cache")
}

// Cache serves repeated GET requests from store for ttl, keyed by request URI. Clients can
// bypass it with "Cache-Control: no-cache"; the fresh response still replaces the cached one.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if !wantsFresh(c.Request) {
			if v, ok := store.Get(key); ok {
				v.(page).replay(c.Writer)
				c.Abort()
				return
			}
		}

		c.Writer.Header().Set(CacheHeader, "MISS")
		tee := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = tee
		c.Next()

		if p, ok := tee.capture(); ok {
			store.Set(key, p, ttl)
		}
	}
}

// Invalidate drops cached responses whose request URI starts with prefix.
func Invalidate(store *cache.Cache, prefix string) {
	for key := range store.Items() {
		if strings.HasPrefix(key, prefix) {
			store.Delete(key)
		}
	}
}
