package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/insight-sphere/internal/circuitbreaker"
	apperrors "github.com/insight-sphere/internal/errors"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/retry"
	"github.com/insight-sphere/internal/types"
)

const providerName = "coingecko"

// statusError records a non-2xx upstream response
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// CoinGeckoConfig configures the CoinGecko client
type CoinGeckoConfig struct {
	BaseURL       string
	Timeout       time.Duration
	TopN          int
	RetryAttempts int
	HTTPClient    *http.Client
	Breaker       *circuitbreaker.CircuitBreaker
	Logger        *logging.Logger
}

// CoinGecko fetches market data from the CoinGecko public API.
// Every call goes through the circuit breaker and is retried with backoff.
type CoinGecko struct {
	baseURL string
	topN    int
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   *retry.Config
	logger  *logging.Logger
}

// NewCoinGecko creates a CoinGecko client
func NewCoinGecko(cfg *CoinGeckoConfig) (*CoinGecko, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	breaker := cfg.Breaker
	if breaker == nil {
		bc := circuitbreaker.DefaultConfig(providerName)
		bc.Logger = logger
		breaker = circuitbreaker.NewCircuitBreaker(bc)
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = 10
	}

	retryCfg := retry.DefaultConfig(cfg.RetryAttempts)
	retryCfg.Retryable = retryable

	return &CoinGecko{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		topN:    topN,
		http:    httpClient,
		breaker: breaker,
		retry:   retryCfg,
		logger:  logger.Component("coingecko"),
	}, nil
}

// Name implements Provider
func (c *CoinGecko) Name() string { return providerName }

// Breaker exposes the circuit breaker for health reporting
func (c *CoinGecko) Breaker() *circuitbreaker.CircuitBreaker { return c.breaker }

// Global implements Provider
func (c *CoinGecko) Global(ctx context.Context) (*types.GlobalSnapshot, error) {
	var raw rawGlobal
	if err := c.get(ctx, "/global", nil, &raw); err != nil {
		return nil, err
	}
	return mapGlobal(&raw), nil
}

// TopAssets implements Provider
func (c *CoinGecko) TopAssets(ctx context.Context) (types.AssetList, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(c.topN))
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	var coins []rawCoin
	if err := c.get(ctx, "/coins/markets", params, &coins); err != nil {
		return nil, err
	}
	return mapCoins(coins), nil
}

func (c *CoinGecko) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	logger := c.logger.WithField("path", path)

	err := retry.Do(logging.WithLogger(ctx, logger), c.retry, func(ctx context.Context, attempt int) error {
		return c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.fetch(ctx, endpoint, dest)
		})
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return apperrors.NewProviderError(providerName, err)
	}
	var catErr *apperrors.CategorizedError
	if errors.As(err, &catErr) {
		return catErr
	}
	return apperrors.NewInternalError("unexpected upstream failure", err)
}

func (c *CoinGecko) fetch(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewInternalError("build upstream request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return apperrors.NewProviderTimeoutError(providerName, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.NewProviderError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return apperrors.NewProviderError(providerName, &statusError{code: resp.StatusCode})
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return apperrors.NewInternalError("decode upstream response", err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryable skips client errors other than 429, the upstream will not change its mind
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return apperrors.IsRetryable(err)
}
