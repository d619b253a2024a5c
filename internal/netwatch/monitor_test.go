package netwatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/insight-sphere/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toggleServer answers while up is true and drops the connection otherwise
type toggleServer struct {
	*httptest.Server
	up atomic.Bool
}

func newToggleServer(t *testing.T) *toggleServer {
	t.Helper()
	ts := &toggleServer{}
	ts.up.Store(true)
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ts.up.Load() {
			hj, ok := w.(http.Hijacker)
			if ok {
				conn, _, err := hj.Hijack()
				if err == nil {
					conn.Close()
					return
				}
			}
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestProbe_AnyResponseIsOnline(t *testing.T) {
	ts := newToggleServer(t)
	m, err := New(Config{URL: ts.URL, Logger: logging.Discard()})
	require.NoError(t, err)

	assert.True(t, m.Probe(context.Background()), "a 503 still proves the network is up")

	ts.up.Store(false)
	assert.False(t, m.Probe(context.Background()))
}

func TestCheck_FiresOnTransitionsOnly(t *testing.T) {
	ts := newToggleServer(t)

	var online, offline atomic.Int32
	m, err := New(Config{
		URL:       ts.URL,
		Timeout:   time.Second,
		Logger:    logging.Discard(),
		OnOnline:  func(context.Context) { online.Add(1) },
		OnOffline: func() { offline.Add(1) },
	})
	require.NoError(t, err)
	ctx := context.Background()

	assert.False(t, m.Check(ctx), "starting online, a successful probe is not a transition")

	ts.up.Store(false)
	assert.True(t, m.Check(ctx))
	assert.False(t, m.Check(ctx))
	assert.False(t, m.Online())

	ts.up.Store(true)
	assert.True(t, m.Check(ctx))
	assert.True(t, m.Online())

	assert.Equal(t, int32(1), offline.Load())
	assert.Equal(t, int32(1), online.Load())
}

func TestRun_StopsWithContext(t *testing.T) {
	ts := newToggleServer(t)
	ts.up.Store(false)

	offline := make(chan struct{}, 1)
	m, err := New(Config{
		URL:       ts.URL,
		Interval:  5 * time.Millisecond,
		Logger:    logging.Discard(),
		OnOffline: func() { offline <- struct{}{} },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-offline:
	case <-time.After(time.Second):
		t.Fatal("offline transition not reported")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
