// Package market supplies the global snapshot and the top asset list served by the API.
package market

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/insight-sphere/internal/types"
)

// Provider is a source of market data
type Provider interface {
	Name() string
	Global(ctx context.Context) (*types.GlobalSnapshot, error)
	TopAssets(ctx context.Context) (types.AssetList, error)
}

// rawGlobal is the CoinGecko /global response
type rawGlobal struct {
	Data struct {
		TotalMarketCap         map[string]types.Amount `json:"total_market_cap"`
		TotalVolume            map[string]types.Amount `json:"total_volume"`
		MarketCapPercentage    map[string]types.Amount `json:"market_cap_percentage"`
		ActiveCryptocurrencies types.Amount            `json:"active_cryptocurrencies"`
		Markets                types.Amount            `json:"markets"`
		UpdatedAt              json.RawMessage         `json:"updated_at"`
	} `json:"data"`
}

// rawCoin is one entry of the CoinGecko /coins/markets response
type rawCoin struct {
	ID                       string       `json:"id"`
	Symbol                   string       `json:"symbol"`
	Name                     string       `json:"name"`
	Image                    string       `json:"image"`
	CurrentPrice             types.Amount `json:"current_price"`
	MarketCap                types.Amount `json:"market_cap"`
	MarketCapRank            *int         `json:"market_cap_rank"`
	PriceChangePercentage24h types.Amount `json:"price_change_percentage_24h"`
	TotalVolume              types.Amount `json:"total_volume"`
	LastUpdated              string       `json:"last_updated"`
}

func mapGlobal(raw *rawGlobal) *types.GlobalSnapshot {
	d := raw.Data
	return &types.GlobalSnapshot{
		TotalMarketCapUSD: d.TotalMarketCap["usd"],
		TotalVolumeUSD:    d.TotalVolume["usd"],
		BitcoinDominance:  d.MarketCapPercentage["btc"],
		EthereumDominance: d.MarketCapPercentage["eth"],
		ActiveAssets:      d.ActiveCryptocurrencies,
		Markets:           d.Markets,
		UpdatedAt:         parseUpdatedAt(d.UpdatedAt),
	}
}

// parseUpdatedAt accepts unix seconds or an already formatted timestamp
func parseUpdatedAt(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC().Format(time.RFC3339)
	}
	return ""
}

// mapCoins ranks coins by position, the upstream already orders by market cap
func mapCoins(coins []rawCoin) types.AssetList {
	list := make(types.AssetList, 0, len(coins))
	for i, c := range coins {
		rank := 0
		if c.MarketCapRank != nil {
			rank = *c.MarketCapRank
		}
		list = append(list, types.AssetRecord{
			Rank:              i + 1,
			ID:                c.ID,
			Symbol:            strings.ToUpper(c.Symbol),
			Name:              c.Name,
			Image:             c.Image,
			CurrentPrice:      c.CurrentPrice,
			MarketCap:         c.MarketCap,
			MarketCapRank:     rank,
			PriceChangePct24h: c.PriceChangePercentage24h,
			TotalVolume:       c.TotalVolume,
			LastUpdated:       c.LastUpdated,
		})
	}
	return list
}
