package web

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/louisbranch/wedding.rsvp/internal/platform/ratelimit"
	module "github.com/louisbranch/wedding.rsvp/internal/services/web/module"
	"github.com/louisbranch/wedding.rsvp/internal/services/web/platform/httpx"
	"github.com/louisbranch/wedding.rsvp/internal/testkit/weddingfakes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewHandlerRequiresServices(t *testing.T) {
	t.Parallel()

	_, err := NewHandler(module.Dependencies{})
	require.Error(t, err)
}

func TestNewServerRequiresAddress(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-10"))
	_, err := NewServer(Config{HTTPAddr: "  "}, env.Deps)
	require.EqualError(t, err, "http address is required")
}

func TestHandlerServesHealthWithRequestID(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-10"))
	handler, err := NewHandler(env.Deps)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rr.Header().Get(httpx.RequestIDHeader))

	var logged bool
	for _, entry := range env.Logs.FilterMessage("http request").All() {
		if entry.ContextMap()["path"] == "/health" {
			logged = true
		}
	}
	assert.True(t, logged, "request log entry missing")
}

func TestHandlerRedirectsAnonymousAdmin(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-10"))
	handler, err := NewHandler(env.Deps)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "/admin/login?next="))
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-10"))
	handler, err := NewHandler(env.Deps)
	require.NoError(t, err)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rsvp/", nil))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/rsvp/"`)
}

func TestServeShutsDownWhenContextEnds(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-10"))
	server, err := NewServer(Config{HTTPAddr: "127.0.0.1:0"}, env.Deps)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + listener.Addr().String() + "/health")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServePrunesIdleLimiterEntries(t *testing.T) {
	t.Parallel()

	env := weddingfakes.NewEnv(t, weddingfakes.Day("2026-04-10"))
	env.Deps.Limiter = ratelimit.New(30, 5*time.Minute)
	require.True(t, env.Deps.Limiter.Allow("203.0.113.7", env.Now()))
	server, err := NewServer(Config{HTTPAddr: "127.0.0.1:0", PruneInterval: 5 * time.Millisecond}, env.Deps)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	env.SetNow(env.Now().Add(time.Hour))
	require.Eventually(t, func() bool { return env.Deps.Limiter.Len() == 0 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
