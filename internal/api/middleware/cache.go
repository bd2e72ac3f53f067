package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/zatekoja/medlibrary/internal/domain/providers"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
)

const cacheKeyPrefix = "http:cache:"

// cachedPrefixes lists the cacheable route prefixes; the longest match wins
var cachedPrefixes = []string{"/api/stores", "/api/content", "/api/procedures/"}

// CacheMiddleware caches successful GET responses of the read API.
// The catalog is immutable at runtime, so entries only go stale across deploys;
// the version is part of every key for that reason.
type CacheMiddleware struct {
	cache      providers.CacheProvider
	ttlSeconds int
	version    string
	metrics    *observability.Metrics
}

// NewCacheMiddleware creates a new cache middleware
func NewCacheMiddleware(cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CacheMiddleware {
	return &CacheMiddleware{
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

// WithVersion scopes cache keys to a build or catalog version
func (m *CacheMiddleware) WithVersion(version string) *CacheMiddleware {
	m.version = version
	return m
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cache == nil || r.Method != http.MethodGet || !cacheable(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		key := m.keyFor(r)

		if body, err := m.cache.Get(ctx, key); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, r.URL.Path)
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, r.URL.Path)
		w.Header().Set("X-Cache", "MISS")

		rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK || rec.body.Len() == 0 {
			return
		}
		if err := m.cache.Set(ctx, key, rec.body.Bytes(), m.ttlSeconds); err != nil {
			logger.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to cache response")
		}
	})
}

func cacheable(path string) bool {
	for _, prefix := range cachedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// keyFor hashes everything that selects a response body: the path, the
// query parameters in canonical order, Accept-Language and the version.
func (m *CacheMiddleware) keyFor(r *http.Request) string {
	var b strings.Builder
	b.WriteString(m.version)
	b.WriteByte('|')
	b.WriteString(r.URL.Path)
	if r.URL.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(r.URL.Query().Encode())
	}
	if lang := r.Header.Get("Accept-Language"); lang != "" {
		b.WriteByte('#')
		b.WriteString(lang)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// bodyRecorder tees the response to the client and a buffer
type bodyRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *bodyRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *bodyRecorder) Write(data []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
