package middleware

import (
	"net/http"
	"roombook/shared"
	"roombook/shared/constant"
	"roombook/transport/http/response"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	cacheKeyRateLimit   = "limiter"
	rateLimitBackendMem = "memory"
)

// clientLimiter keeps one token bucket per client key for the in-process backend.
// Idle buckets expire after a few windows.
type clientLimiter struct {
	mu      sync.Mutex
	buckets *gocache.Cache
	limit   rate.Limit
	burst   int
	idle    time.Duration
}

const idleWindows = 3

func newClientLimiter(maxReqs, windowSecs int) *clientLimiter {
	limit := rate.Inf
	idle := time.Minute

	if maxReqs > 0 && windowSecs > 0 {
		limit = rate.Every(time.Duration(windowSecs) * time.Second / time.Duration(maxReqs))
		idle = time.Duration(windowSecs*idleWindows) * time.Second
	}

	return &clientLimiter{
		buckets: gocache.New(idle, idle),
		limit:   limit,
		burst:   max(1, maxReqs),
		idle:    idle,
	}
}

func (c *clientLimiter) get(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if found, ok := c.buckets.Get(key); ok {
		limiter, _ := found.(*rate.Limiter)
		c.buckets.Set(key, limiter, c.idle)

		return limiter
	}

	limiter := rate.NewLimiter(c.limit, c.burst)
	c.buckets.Set(key, limiter, c.idle)

	return limiter
}

func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			key := shared.BuildCacheKey(cacheKeyRateLimit, clientIP(r), userAgent(r))

			if a.config.App.RateLimiter.Backend == rateLimitBackendMem {
				a.allowLocal(w, r, next, key)

				return
			}

			a.allowShared(w, r, next, key)
		})
	}
}

func (a *appMiddleware) allowLocal(w http.ResponseWriter, r *http.Request, next http.Handler, key string) {
	limiter := a.clients.get(key)
	if !limiter.Allow() {
		response.WithRequestLimitExceeded(w)

		return
	}

	a.setLimitHeaders(w, int(limiter.Tokens()))
	next.ServeHTTP(w, r)
}

// allowShared counts requests per fixed window in the cache so every replica sees the same budget.
// A cache failure lets the request through.
func (a *appMiddleware) allowShared(w http.ResponseWriter, r *http.Request, next http.Handler, key string) {
	maxReqs := a.config.App.RateLimiter.MaxRequests

	count, err := a.cache.Increment(r.Context(), key, a.config.App.RateLimiter.WindowSeconds)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limiter cache unavailable")
		next.ServeHTTP(w, r)

		return
	}

	if count > int64(maxReqs) {
		a.setLimitHeaders(w, 0)
		response.WithRequestLimitExceeded(w)

		return
	}

	a.setLimitHeaders(w, maxReqs-int(count))
	next.ServeHTTP(w, r)
}

func (a *appMiddleware) setLimitHeaders(w http.ResponseWriter, remaining int) {
	w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(a.config.App.RateLimiter.MaxRequests))
	w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, remaining)))
	w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(a.config.App.RateLimiter.WindowSeconds))
}

func userAgent(r *http.Request) string {
	ua := r.Header.Get(constant.RequestHeaderUserAgent)
	if ua == "" {
		ua = "unknown"
	}

	return ua
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	return r.RemoteAddr
}
