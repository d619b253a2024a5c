package market

import (
	"context"

	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/storage"
	"github.com/insight-sphere/internal/types"
)

const (
	CacheKeyGlobal    = "global_market"
	CacheKeyTopAssets = "top_cryptos"
)

// CachedProvider serves upstream responses from the snapshot cache while they are fresh.
// Cache failures degrade to a direct upstream call.
type CachedProvider struct {
	next   Provider
	cache  *storage.CacheService
	logger *logging.Logger
}

// NewCachedProvider wraps next with cache
func NewCachedProvider(next Provider, cache *storage.CacheService, logger *logging.Logger) *CachedProvider {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &CachedProvider{next: next, cache: cache, logger: logger.Component("market_cache")}
}

// Name implements Provider
func (p *CachedProvider) Name() string { return p.next.Name() }

// Global implements Provider
func (p *CachedProvider) Global(ctx context.Context) (*types.GlobalSnapshot, error) {
	var snapshot types.GlobalSnapshot
	if p.lookup(ctx, CacheKeyGlobal, &snapshot) {
		return &snapshot, nil
	}

	fresh, err := p.next.Global(ctx)
	if err != nil {
		return nil, err
	}
	p.store(ctx, CacheKeyGlobal, fresh)
	return fresh, nil
}

// TopAssets implements Provider
func (p *CachedProvider) TopAssets(ctx context.Context) (types.AssetList, error) {
	var assets types.AssetList
	if p.lookup(ctx, CacheKeyTopAssets, &assets) {
		return assets, nil
	}

	fresh, err := p.next.TopAssets(ctx)
	if err != nil {
		return nil, err
	}
	p.store(ctx, CacheKeyTopAssets, fresh)
	return fresh, nil
}

func (p *CachedProvider) lookup(ctx context.Context, key string, dest interface{}) bool {
	found, err := p.cache.Get(ctx, key, dest)
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	if found {
		p.logger.WithField("key", key).Debug("Cache hit")
	}
	return found
}

func (p *CachedProvider) store(ctx context.Context, key string, value interface{}) {
	if err := p.cache.Set(ctx, key, value); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
