package middleware

import (
	"net/http"
	"strconv"
	"time"

	apperrors "lockrent/pkg/errors"
	httputil "lockrent/pkg/http"
	"lockrent/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyExtractor returns the rate limit key for a request. An empty key is not
// limited.
type KeyExtractor func(r *http.Request) string

// UserRateLimiter keeps one token bucket per user. Idle buckets expire from
// the cache after a few windows.
type UserRateLimiter struct {
	limiters  *cache.Cache
	limit     rate.Limit
	burst     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
}

// NewUserRateLimiter allows requests per window for each key, with bursts of
// up to requests.
func NewUserRateLimiter(requests int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *UserRateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &UserRateLimiter{
		limiters:  cache.New(3*window, 10*window),
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		window:    window,
		extractor: extractor,
		log:       log,
	}
}

// HeaderExtractor keys requests on a header value.
func HeaderExtractor(header string) KeyExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(header)
	}
}

func (rl *UserRateLimiter) limiter(key string) *rate.Limiter {
	if l, found := rl.limiters.Get(key); found {
		rl.limiters.SetDefault(key, l)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.limiters.Add(key, l, cache.DefaultExpiration); err != nil {
		// lost the race to another request for the same key
		if existing, found := rl.limiters.Get(key); found {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

func (rl *UserRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	return rl.limiter(key).Allow()
}

func RateLimit(limiter *UserRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)
			if limiter.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}

			limiter.log.Warn("Rate limit exceeded",
				"request_id", requestID(r),
				"user_id", key,
				"path", r.URL.Path,
			)
			retryAfter := time.Duration(float64(time.Second) / float64(limiter.limit))
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retryAfter.Seconds()))))
			_ = httputil.WriteError(w, apperrors.RateLimited("Rate limit exceeded"))
		})
	}
}
