package middleware

import (
	"bytes"
	"net/http"
	"time"

	apperrors "lockrent/pkg/errors"
	httputil "lockrent/pkg/http"

	"github.com/patrickmn/go-cache"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
	// Reserve marks key as in flight. It returns false when the key is
	// already reserved or has a stored response.
	Reserve(key string) bool
	Release(key string)
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

// inFlight marks a reserved key whose response is not stored yet.
type inFlight struct{}

// CacheIdempotencyStore keeps responses in an expiring in-process cache.
type CacheIdempotencyStore struct {
	cache *cache.Cache
}

func NewCacheIdempotencyStore(ttl time.Duration) *CacheIdempotencyStore {
	return &CacheIdempotencyStore{cache: cache.New(ttl, 2*ttl)}
}

func (s *CacheIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	v, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	resp, ok := v.(*CachedResponse)
	return resp, ok
}

func (s *CacheIdempotencyStore) Set(key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	s.cache.SetDefault(key, response)
}

func (s *CacheIdempotencyStore) Reserve(key string) bool {
	return s.cache.Add(key, inFlight{}, cache.DefaultExpiration) == nil
}

func (s *CacheIdempotencyStore) Release(key string) {
	if v, found := s.cache.Get(key); found {
		if _, pending := v.(inFlight); pending {
			s.cache.Delete(key)
		}
	}
}

func (s *CacheIdempotencyStore) Len() int {
	return s.cache.ItemCount()
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated key. Keys are
// scoped by the caller returned from scope plus method and path. A duplicate
// that arrives while the first request is still running gets a CONFLICT.
// Failed responses are not stored so the client can retry with the same key.
func Idempotency(store IdempotencyStore, headerName string, scope KeyExtractor) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get(headerName)
			if idempotencyKey == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Method + " " + r.URL.Path + "|" + idempotencyKey
			if scope != nil {
				key = scope(r) + "|" + key
			}

			if cached, found := store.Get(key); found {
				replayCachedResponse(w, cached)
				return
			}
			if !store.Reserve(key) {
				if cached, found := store.Get(key); found {
					replayCachedResponse(w, cached)
					return
				}
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this Idempotency-Key is in progress"))
				return
			}
			defer store.Release(key)

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			next.ServeHTTP(capture, r)

			if capture.statusCode >= 200 && capture.statusCode < 300 {
				store.Set(key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
			}
		})
	}
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		if key == RequestIDHeader {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
