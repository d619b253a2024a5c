// Package netwatch probes the dashboard API and reports online/offline transitions.
package netwatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/insight-sphere/internal/logging"
)

// Config configures a Monitor
type Config struct {
	URL        string
	Interval   time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger

	OnOnline  func(ctx context.Context)
	OnOffline func()
}

// Monitor polls a URL and fires callbacks when reachability changes.
// Any HTTP response counts as online; only a transport failure is offline.
type Monitor struct {
	url       string
	interval  time.Duration
	client    *http.Client
	logger    *logging.Logger
	onOnline  func(ctx context.Context)
	onOffline func()

	mu     sync.Mutex
	online bool
}

// New creates a Monitor. The network is assumed reachable until a probe fails.
func New(cfg Config) (*Monitor, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("probe URL is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &Monitor{
		url:       cfg.URL,
		interval:  interval,
		client:    client,
		logger:    logger.Component("netwatch"),
		onOnline:  cfg.OnOnline,
		onOffline: cfg.OnOffline,
		online:    true,
	}, nil
}

// Online reports the last observed reachability
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Probe issues one request and reports whether any response came back
func (m *Monitor) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.WithError(err).Debug("Probe failed")
		return false
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return true
}

// Check probes once and fires the matching callback on a transition.
// It reports whether the state changed.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.Probe(ctx)
	if ctx.Err() != nil {
		return false
	}

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return false
	}

	if online {
		m.logger.Info("API reachable again")
		if m.onOnline != nil {
			m.onOnline(ctx)
		}
	} else {
		m.logger.Warn("API unreachable")
		if m.onOffline != nil {
			m.onOffline()
		}
	}
	return true
}

// Run probes on every interval until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
