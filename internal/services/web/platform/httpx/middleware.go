// Package httpx holds the middleware and response writers shared by the
// web modules.
package httpx

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/requestctx"
)

// RequestIDHeader carries the correlation id on requests and responses.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds ids accepted from clients.
const maxRequestIDLen = 128

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps handler so the first middleware listed sees the request
// first. Nil entries are skipped.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	out := orNotFound(handler)
	for i := len(middleware); i > 0; i-- {
		if mw := middleware[i-1]; mw != nil {
			out = mw(out)
		}
	}
	return out
}

// RequestID reuses a well-formed inbound X-Request-ID or mints one, then
// exposes it on the response and the request context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		next = orNotFound(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if rid == "" || len(rid) > maxRequestIDLen {
				rid = uuid.NewString()
			}
			r.Header.Set(RequestIDHeader, rid)
			w.Header().Set(RequestIDHeader, rid)
			next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), rid)))
		})
	}
}

// RecoverPanic logs a handler panic with its stack and answers 500.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func RecoverPanic(logger *zap.Logger) Middleware {
	logger = logging.OrNop(logger)
	return func(next http.Handler) http.Handler {
		next = orNotFound(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic recovered",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestctx.RequestIDFromContext(r.Context())),
					zap.Any("panic", v),
					zap.Stack("stack"),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func orNotFound(h http.Handler) http.Handler {
	if h == nil {
		return http.NotFoundHandler()
	}
	return h
}
