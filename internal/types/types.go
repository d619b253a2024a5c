// Package types provides common type definitions for the InsightSphere dashboard and API.
package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Resource identifies one of the remote resources the dashboard pulls
type Resource string

const (
	// ResourceGlobal is the global market aggregate
	ResourceGlobal Resource = "global"
	// ResourceTopAssets is the ranked asset list
	ResourceTopAssets Resource = "top-cryptos"
)

// Path returns the API path segment for the resource
func (r Resource) Path() string {
	return "/" + string(r)
}

// Amount is a numeric field decoded leniently from the API.
// Numbers and numeric strings are accepted; null, missing or malformed values
// decode to an invalid Amount instead of failing the whole payload.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a valid Amount holding v
func NewAmount(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}

	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		raw = []byte(s)
	}

	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	*a = NewAmount(v)
	return nil
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, a.Value, 'f', -1, 64), nil
}

// Or returns the value, or fallback when the amount is invalid
func (a Amount) Or(fallback float64) float64 {
	if !a.Valid {
		return fallback
	}
	return a.Value
}

// GlobalSnapshot is the global market aggregate returned by /api/global
type GlobalSnapshot struct {
	TotalMarketCapUSD Amount `json:"total_market_cap_usd"`
	TotalVolumeUSD    Amount `json:"total_volume_usd"`
	BitcoinDominance  Amount `json:"bitcoin_dominance"`  // percent, 0-100
	EthereumDominance Amount `json:"ethereum_dominance"` // percent, 0-100
	ActiveAssets      Amount `json:"active_cryptocurrencies"`
	Markets           Amount `json:"markets"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

// OtherDominance returns the residual share not held by bitcoin or ethereum.
// The result is clamped at zero; clamped reports whether the bitcoin and
// ethereum shares summed above 100.
func (g GlobalSnapshot) OtherDominance() (share float64, clamped bool) {
	share = 100 - g.BitcoinDominance.Or(0) - g.EthereumDominance.Or(0)
	if share < 0 {
		return 0, true
	}
	return share, false
}

// AssetRecord is one row of the ranked asset list
type AssetRecord struct {
	Rank              int    `json:"rank"`
	ID                string `json:"id"`
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Image             string `json:"image"` // logo URL, may be empty
	CurrentPrice      Amount `json:"current_price"`
	MarketCap         Amount `json:"market_cap"`
	MarketCapRank     int    `json:"market_cap_rank,omitempty"`
	PriceChangePct24h Amount `json:"price_change_percentage_24h"`
	TotalVolume       Amount `json:"total_volume"`
	LastUpdated       string `json:"last_updated,omitempty"`
}

// AssetList is ordered by rank ascending
type AssetList []AssetRecord

// TotalMarketCap sums the valid market caps of the list; negative caps are skipped
func (l AssetList) TotalMarketCap() float64 {
	var total float64
	for _, a := range l {
		if v := a.MarketCap.Or(0); v > 0 {
			total += v
		}
	}
	return total
}

// Envelope is the uniform success/failure wrapper around every API payload
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// CacheEntryStatus describes one cached upstream response
type CacheEntryStatus struct {
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds float64   `json:"expires_in_seconds"`
}

// CacheStatus is the payload of /api/cache-status
type CacheStatus struct {
	CacheCount   int                         `json:"cache_count"`
	CacheDetails map[string]CacheEntryStatus `json:"cache_details"`
}

// HealthStatus is the payload of the root health endpoint
type HealthStatus struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
