package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"skynest/internal/auth"
	"skynest/internal/backend"
	"skynest/internal/domain"
	"skynest/internal/metrics"
	"skynest/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestContext tags the request with an id and a request-scoped logger.
func requestContext(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			reqLogger := logger.With().Str("request_id", id).Logger()
			ctx := context.WithValue(r.Context(), requestIDKey, id)
			ctx = context.WithValue(ctx, loggerKey, &reqLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		loggerFrom(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				loggerFrom(r.Context()).Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed["*"] || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+requestIDHeader)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientLimit applies the per-client token bucket to every request.
func clientLimit(l *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				writeError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

// userHandler is a handler behind the session check.
type userHandler func(w http.ResponseWriter, r *http.Request, user models.User)

// instrument records the route metric under a stable route name.
func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(route, recorder.status)
	})
}

// authed verifies the portal session and puts the backend token into the context.
func (s *HTTPServer) authed(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, r, fmt.Errorf("%w: sign in required", domain.ErrUnauthorized))
			return
		}
		session, err := s.sessions.Parse(strings.TrimSpace(token))
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := auth.ContextWithSession(r.Context(), session)
		ctx = backend.ContextWithToken(ctx, session.BackendToken)
		reqLogger := loggerFrom(ctx).With().Int64("user_id", session.User.ID).Str("role", string(session.User.Role)).Logger()
		ctx = context.WithValue(ctx, loggerKey, &reqLogger)

		h(w, r.WithContext(ctx), session.User)
	}
}

// mutation caps writes of one user per window. A failing store lets the write through.
func (s *HTTPServer) mutation(h userHandler) userHandler {
	return func(w http.ResponseWriter, r *http.Request, user models.User) {
		if s.limits != nil && s.cfg.RateLimit.Mutations > 0 {
			key := "mutations:" + strconv.FormatInt(user.ID, 10)
			allowed, err := s.limits.CheckRateLimit(r.Context(), key, s.cfg.RateLimit.Mutations, s.cfg.RateLimit.Window)
			if err != nil {
				loggerFrom(r.Context()).Warn().Err(err).Msg("mutation rate limit check failed")
			} else if !allowed {
				writeError(w, r, domain.ErrRateLimited)
				return
			}
		}
		h(w, r, user)
	}
}

// requirePerm checks a role permission before the handler runs.
func requirePerm(perm auth.Permission, h userHandler) userHandler {
	return func(w http.ResponseWriter, r *http.Request, user models.User) {
		if err := auth.Authorize(user.Role, perm); err != nil {
			writeError(w, r, err)
			return
		}
		h(w, r, user)
	}
}
