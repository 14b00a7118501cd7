package throttle

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/louisbranch/wedding.rsvp/internal/platform/ratelimit"
)

func TestMiddlewareRejectsAfterBudget(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	handler := Middleware(Config{
		Limiter: ratelimit.New(2, time.Minute),
		Clock:   func() time.Time { return now },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rsvp/tok", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rsvp/tok", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/rsvp/tok", nil)
	other.RemoteAddr = "198.51.100.7:4242"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	assert.Equal(t, http.StatusNoContent, rr.Code, "budgets are per client")
}

func TestMiddlewareCustomReject(t *testing.T) {
	t.Parallel()

	handler := Middleware(Config{
		Limiter: ratelimit.New(1, time.Hour),
		Reject: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		},
	})(http.NotFoundHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestMiddlewareNilLimiterPassesThrough(t *testing.T) {
	t.Parallel()

	next := http.NotFoundHandler()
	handler := Middleware(Config{})(next)
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}
}
