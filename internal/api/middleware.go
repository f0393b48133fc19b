package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rhedu/adstudio-server/internal/http/response"
	"github.com/rhedu/adstudio-server/internal/id"
	"github.com/rhedu/adstudio-server/internal/logger"
	"github.com/rhedu/adstudio-server/internal/ratelimit"
)

// Password gate cookie and the paths reachable without it.
const (
	authCookieName = "rh_auth"
	authPagePath   = "/auth"
)

var gateExemptPaths = []string{authPagePath, pathLogin, "/health"}

// requestID honours an incoming X-Request-Id or assigns a new one.
// The ID is readable with middleware.GetReqID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(middleware.RequestIDHeader)
		if reqID == "" {
			reqID = id.MustGenerate(id.PrefixRequest)
		}
		w.Header().Set(middleware.RequestIDHeader, reqID)

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request and stores a request-scoped
// logger in the context for handlers.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			log := base.With("request_id", middleware.GetReqID(r.Context()))

			defer func() {
				log.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote", r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r.WithContext(logger.NewContext(r.Context(), log)))
		})
	}
}

// passwordGate requires the shared-password cookie when the gate is enabled.
// API paths get a 401; pages are redirected to the login page.
func (s *Server) passwordGate(next http.Handler) http.Handler {
	if !s.opts.Gate.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slices.Contains(gateExemptPaths, r.URL.Path) || r.Method == http.MethodOptions || s.hasValidCookie(r) {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			response.Unauthorized(w, "authentication required", s.logger)
			return
		}

		target := authPagePath + "?redirect=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	})
}

func (s *Server) hasValidCookie(r *http.Request) bool {
	c, err := r.Cookie(authCookieName)
	if err != nil {
		return false
	}
	return passwordMatches(c.Value, s.opts.Gate.Password)
}

func passwordMatches(given, want string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

// recoverer turns a handler panic into a JSON 500.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.FromContext(r.Context()).Error("Handler panicked",
					"panic", rvr,
					"stack", string(debug.Stack()),
				)
				if r.Header.Get("Connection") != "Upgrade" {
					response.InternalError(w, "internal server error", log)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit limits the listed paths per client IP. Other paths pass through.
func rateLimit(limiter *ratelimit.KeyedRateLimiter, log *slog.Logger, paths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(paths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !limiter.Allow(key) {
				log.Warn("Rate limit exceeded", "ip", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				response.TooManyRequests(w, "Too many requests. Please try again later.", log)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the request's remote host. middleware.RealIP has already
// applied X-Forwarded-For / X-Real-IP when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
