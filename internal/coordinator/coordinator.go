// Package coordinator runs the dashboard refresh pipeline.
//
// A Coordinator fetches the global snapshot and the asset list in parallel,
// renders every region from the result and keeps doing so on a fixed schedule.
// All triggers (ticker, manual key, network reconnect) go through TriggerRefresh,
// which drops a request while another refresh is in flight.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/insight-sphere/internal/errors"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/render"
	"github.com/insight-sphere/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the refresh period when none is configured
const DefaultInterval = 60 * time.Second

// ErrRefreshInFlight is returned when a refresh is requested while one is running
var ErrRefreshInFlight = errors.New("refresh already in flight")

// OfflineMessage is shown when the network watch reports the API unreachable
const OfflineMessage = "network connection lost, data may be stale"

// State is the refresh state of a Coordinator
type State int32

const (
	StateIdle State = iota
	StateInFlight
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in_flight"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Fetcher retrieves the two dashboard resources
type Fetcher interface {
	FetchGlobal(ctx context.Context) (*types.GlobalSnapshot, error)
	FetchTopAssets(ctx context.Context) (types.AssetList, error)
}

// Config configures a Coordinator
type Config struct {
	Fetcher   Fetcher
	Surface   render.Surface
	Canvas    *render.Canvas // optional, a private canvas is created when nil
	Interval  time.Duration
	BannerTTL time.Duration
	Logger    *logging.Logger
	Now       func() time.Time

	// AfterRefresh is called at the end of every attempt that was not dropped
	AfterRefresh func(err error)
}

// ticker is the part of time.Ticker the scheduler needs
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ *time.Ticker }

func (t stdTicker) C() <-chan time.Time { return t.Ticker.C }

func newStdTicker(d time.Duration) ticker { return stdTicker{time.NewTicker(d)} }

// views are the renderers of the text regions
type views struct {
	metrics     func(*types.GlobalSnapshot) string
	marketStats func(*types.GlobalSnapshot) string
	table       func(types.AssetList) string
	status      func(now time.Time, interval time.Duration) string
}

var defaultViews = views{
	metrics:     render.Metrics,
	marketStats: render.MarketStats,
	table:       render.Table,
	status:      render.Status,
}

// Coordinator owns the refresh state, the schedule and the live chart
type Coordinator struct {
	fetcher      Fetcher
	surface      render.Surface
	canvas       *render.Canvas
	banner       *render.Banner
	interval     time.Duration
	logger       *logging.Logger
	now          func() time.Time
	afterRefresh func(err error)
	newTicker    func(time.Duration) ticker
	views        views

	state atomic.Int32

	// chart is only touched while holding StateInFlight
	chart *render.Chart

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Coordinator
func New(cfg Config) (*Coordinator, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.Surface == nil {
		return nil, fmt.Errorf("surface is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	canvas := cfg.Canvas
	if canvas == nil {
		canvas = render.NewCanvas()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Coordinator{
		fetcher:      cfg.Fetcher,
		surface:      cfg.Surface,
		canvas:       canvas,
		banner:       render.NewBanner(cfg.Surface, cfg.BannerTTL),
		interval:     interval,
		logger:       logger.Component("coordinator"),
		now:          now,
		afterRefresh: cfg.AfterRefresh,
		newTicker:    newStdTicker,
		views:        defaultViews,
	}, nil
}

// State returns the current refresh state
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Banner returns the error banner owned by the coordinator
func (c *Coordinator) Banner() *render.Banner {
	return c.banner
}

// Interval returns the refresh period
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}

// TriggerRefresh runs one refresh attempt.
// It returns ErrRefreshInFlight without fetching anything if another attempt is
// running. Failures are reported on the banner and returned; no region other than
// the banner is touched on failure.
func (c *Coordinator) TriggerRefresh(ctx context.Context) (err error) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateInFlight)) {
		c.logger.Debug("Refresh dropped, another refresh is in flight")
		return ErrRefreshInFlight
	}

	start := c.now()
	c.surface.SetLoading(true)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
			c.logger.WithError(err).Error("Refresh aborted by panic")
			c.banner.Show("failed to render dashboard")
		}
		c.surface.SetLoading(false)
		c.state.Store(int32(StateIdle))

		if c.afterRefresh != nil {
			c.afterRefresh(err)
		}
	}()

	global, assets, err := c.fetchAll(ctx)
	if err != nil {
		c.report(err)
		return err
	}

	c.render(global, assets)

	c.logger.WithFields(map[string]interface{}{
		"assets":   len(assets),
		"duration": c.now().Sub(start).String(),
	}).Info("Dashboard refreshed")
	return nil
}

// fetchAll runs both fetches concurrently and waits for both.
// The first failure cancels the other request.
func (c *Coordinator) fetchAll(ctx context.Context) (*types.GlobalSnapshot, types.AssetList, error) {
	var (
		global *types.GlobalSnapshot
		assets types.AssetList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverInto(&err, types.ResourceGlobal)
		global, err = c.fetcher.FetchGlobal(gctx)
		return err
	})
	g.Go(func() (err error) {
		defer recoverInto(&err, types.ResourceTopAssets)
		assets, err = c.fetcher.FetchTopAssets(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if global == nil {
		return nil, nil, apperrors.NewAPIError(types.ResourceGlobal, "")
	}
	return global, assets, nil
}

// recoverInto turns a panicking fetcher into a transport error
func recoverInto(err *error, resource types.Resource) {
	if r := recover(); r != nil {
		*err = apperrors.NewTransportError(resource, fmt.Errorf("panic: %v", r))
	}
}

// render builds every region first and publishes only when all of them
// rendered, in order: metrics, market stats, table, chart, status.
// A renderer panic therefore leaves every region as it was.
func (c *Coordinator) render(global *types.GlobalSnapshot, assets types.AssetList) {
	if _, clamped := global.OtherDominance(); clamped {
		c.logger.WithFields(map[string]interface{}{
			"bitcoin_dominance":  global.BitcoinDominance.Value,
			"ethereum_dominance": global.EthereumDominance.Value,
		}).Warn("Dominance shares exceed 100%, residual share clamped to zero")
	}

	slices := render.ChartSlices(assets)
	contents := []struct {
		region  render.Region
		content string
	}{
		{render.RegionMetrics, c.views.metrics(global)},
		{render.RegionMarketStats, c.views.marketStats(global)},
		{render.RegionTable, c.views.table(assets)},
		{render.RegionChart, render.DrawChart(slices)},
		{render.RegionStatus, c.views.status(c.now(), c.interval)},
	}

	if c.chart != nil {
		c.chart.Destroy()
		c.chart = nil
	}
	c.chart = c.canvas.Place(slices)

	for _, rc := range contents {
		c.surface.Update(rc.region, rc.content)
	}
}

// report shows one banner for a failed attempt
func (c *Coordinator) report(err error) {
	message := err.Error()
	logger := c.logger.WithError(err)

	if fe, ok := apperrors.AsFetchError(err); ok {
		message = fe.Message
		logger = logger.WithFields(map[string]interface{}{
			"resource": fe.Resource,
			"kind":     fe.Kind,
		})
	}

	logger.Warn("Refresh failed")
	c.banner.Show(message)
}

// DismissBanner removes the most recent error notice
func (c *Coordinator) DismissBanner() bool {
	return c.banner.DismissLatest()
}

// Close stops the schedule, pending banner timers and the live chart.
// It must not be called while a refresh is in flight.
func (c *Coordinator) Close() {
	c.StopSchedule()
	c.banner.Close()
	if c.chart != nil {
		c.chart.Destroy()
		c.chart = nil
	}
}
