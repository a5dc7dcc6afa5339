package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPProbe_Reachable(t *testing.T) {
	methods := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods <- r.Method
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	probe := NewHTTPProbe(srv.URL, time.Second)
	assert.True(t, probe.IsConnected(context.Background()), "any response counts as connected")
	assert.Equal(t, http.MethodHead, <-methods)
}

func TestHTTPProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	probe := NewHTTPProbe(url, time.Second)
	assert.False(t, probe.IsConnected(context.Background()))
}

func TestHTTPProbe_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	probe := NewHTTPProbe(srv.URL, 50*time.Millisecond)
	start := time.Now()
	assert.False(t, probe.IsConnected(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPProbe_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, NewHTTPProbe("http://127.0.0.1:1", time.Second).IsConnected(ctx))
}

func TestNewHTTPProbe_Defaults(t *testing.T) {
	p := NewHTTPProbe("", 0)
	assert.Equal(t, DefaultURL, p.url)
	assert.Equal(t, DefaultTimeout, p.timeout)
}

func TestProbeFunc(t *testing.T) {
	var p Probe = ProbeFunc(func(context.Context) bool { return true })
	assert.True(t, p.IsConnected(context.Background()))
}
