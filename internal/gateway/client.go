// Package gateway fetches the dashboard's remote resources and unwraps the API envelope.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/insight-sphere/internal/errors"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/types"
)

// maxBodyBytes caps how much of a response is read
const maxBodyBytes = 4 << 20

// Client fetches the global snapshot and the ranked asset list
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// ClientConfig configures a Client
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration // ignored when HTTPClient is set
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// NewClient creates a gateway client
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if cfg.BaseURL == "" {
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

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger.Component("gateway"),
	}, nil
}

// FetchGlobal fetches the global market snapshot
func (c *Client) FetchGlobal(ctx context.Context) (*types.GlobalSnapshot, error) {
	snapshot, err := fetchResource[types.GlobalSnapshot](ctx, c, types.ResourceGlobal)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FetchTopAssets fetches the ranked asset list
func (c *Client) FetchTopAssets(ctx context.Context) (types.AssetList, error) {
	return fetchResource[types.AssetList](ctx, c, types.ResourceTopAssets)
}

// failureBody covers both our own envelope and FastAPI-style {"detail": ...} errors
type failureBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func fetchResource[T any](ctx context.Context, c *Client, resource types.Resource) (T, error) {
	var zero T
	start := time.Now()
	logger := c.logger.WithField("resource", resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+resource.Path(), nil)
	if err != nil {
		return zero, apperrors.NewTransportError(resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithError(err).Warn("Request failed")
		return zero, apperrors.NewTransportError(resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return zero, apperrors.NewTransportError(resource, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fetchErr := apperrors.NewTransportError(resource, fmt.Errorf("unexpected status %s", resp.Status))
		var failure failureBody
		if json.Unmarshal(body, &failure) == nil {
			if failure.Message != "" {
				fetchErr.Message = failure.Message
			} else if failure.Detail != "" {
				fetchErr.Message = failure.Detail
			}
		}
		logger.WithField("status", resp.StatusCode).Warn("Unexpected response status")
		return zero, fetchErr
	}

	var envelope types.Envelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, apperrors.NewTransportError(resource, fmt.Errorf("decode envelope: %w", err))
	}

	if !envelope.Success {
		logger.WithField("message", envelope.Message).Warn("API reported failure")
		return zero, apperrors.NewAPIError(resource, envelope.Message)
	}

	logger.WithField("duration", time.Since(start).String()).Debug("Resource fetched")
	return envelope.Data, nil
}
