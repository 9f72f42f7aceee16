package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func Chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			handler = middlewares[i](handler)
		}
	}
	return handler
}

// RateLimiter throttles inbound requests with a token bucket.
type RateLimiter interface {
	Allow() bool
	Wait(context.Context) error
	Middleware(http.Handler) http.Handler
}

type rateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(requestsPerMinute int, burst int) RateLimiter {
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute)/60, burst),
	}
}

func (rl *rateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

func (rl *rateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

func (rl *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow() {
			WriteError(w, errors.TooManyRequests("middleware.RateLimiter"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Recovery(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					// Recovery runs outside RequestID, so the id is only on the
					// response headers.
					requestID := GetRequestID(r.Context())
					if requestID == "" {
						requestID = w.Header().Get("X-Request-ID")
					}
					logger.WithFields(logrus.Fields{
						"error":      rec,
						"stack":      string(debug.Stack()),
						"request_id": requestID,
					}).Error("Panic recovered")

					WriteError(w, errors.Internal("middleware.Recovery", nil, "Internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests on any path and sets the allowed origin on
// every response. A configured origin other than "*" is treated as a prefix;
// matching request origins are echoed back.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin(cfg.AllowedOrigin, r.Header.Get("Origin")))
			if cfg.AllowedOrigin != "*" {
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allowedOrigin(configured, origin string) string {
	switch {
	case configured == "" || configured == "*":
		return "*"
	case origin != "" && strings.HasPrefix(origin, configured):
		return origin
	default:
		return configured
	}
}

// Timeout bounds the request context. Handlers observe the deadline through
// the context passed to upstream calls.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WriteError writes err as a JSON {error, details} body with its status code.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		appErr = errors.Internal("middleware.WriteError", err, "Internal server error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	if encErr := json.NewEncoder(w).Encode(appErr); encErr != nil {
		logrus.WithError(encErr).Error("Failed to encode error response")
	}
}
