package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/insight-sphere/internal/types"
)

// mockGlobal and mockCoins are fixed samples in upstream shape so the mock
// goes through the same mapping as live data.
const mockGlobal = `{"data": {
	"total_market_cap": {"usd": 2350000000000},
	"total_volume": {"usd": 98000000000},
	"market_cap_percentage": {"btc": 42.3, "eth": 18.7},
	"active_cryptocurrencies": 8947,
	"markets": 745,
	"updated_at": "2024-01-01T00:00:00Z"
}}`

const mockCoins = `[
	{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "image": "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
	 "current_price": 43250.50, "market_cap": 847234567890, "market_cap_rank": 1, "price_change_percentage_24h": 2.45, "total_volume": 25000000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "ethereum", "symbol": "eth", "name": "Ethereum", "image": "https://assets.coingecko.com/coins/images/279/large/ethereum.png",
	 "current_price": 2678.90, "market_cap": 321456789012, "market_cap_rank": 2, "price_change_percentage_24h": -1.23, "total_volume": 15000000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "tether", "symbol": "usdt", "name": "Tether", "image": "https://assets.coingecko.com/coins/images/325/large/Tether.png",
	 "current_price": 1.00, "market_cap": 89123456789, "market_cap_rank": 3, "price_change_percentage_24h": 0.02, "total_volume": 28000000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "binancecoin", "symbol": "bnb", "name": "BNB", "image": "https://assets.coingecko.com/coins/images/825/large/bnb-icon2_2x.png",
	 "current_price": 245.67, "market_cap": 37890123456, "market_cap_rank": 4, "price_change_percentage_24h": 3.21, "total_volume": 1200000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "solana", "symbol": "sol", "name": "Solana", "image": "https://assets.coingecko.com/coins/images/4128/large/solana.png",
	 "current_price": 67.89, "market_cap": 28567891234, "market_cap_rank": 5, "price_change_percentage_24h": 5.67, "total_volume": 2100000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "ripple", "symbol": "xrp", "name": "XRP", "image": "https://assets.coingecko.com/coins/images/44/large/xrp-symbol-white-128.png",
	 "current_price": 0.5234, "market_cap": 27890123456, "market_cap_rank": 6, "price_change_percentage_24h": -2.34, "total_volume": 1800000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "usd-coin", "symbol": "usdc", "name": "USD Coin", "image": "https://assets.coingecko.com/coins/images/6319/large/USD_Coin_icon.png",
	 "current_price": 1.00, "market_cap": 25678901234, "market_cap_rank": 7, "price_change_percentage_24h": -0.01, "total_volume": 4200000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "cardano", "symbol": "ada", "name": "Cardano", "image": "https://assets.coingecko.com/coins/images/975/large/cardano.png",
	 "current_price": 0.3789, "market_cap": 13456789012, "market_cap_rank": 8, "price_change_percentage_24h": 1.89, "total_volume": 890000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "avalanche-2", "symbol": "avax", "name": "Avalanche", "image": "https://assets.coingecko.com/coins/images/12559/large/Avalanche_Circle_RedWhite_Trans.png",
	 "current_price": 23.45, "market_cap": 8901234567, "market_cap_rank": 9, "price_change_percentage_24h": 4.12, "total_volume": 650000000, "last_updated": "2024-01-01T00:00:00Z"},
	{"id": "dogecoin", "symbol": "doge", "name": "Dogecoin", "image": "https://assets.coingecko.com/coins/images/5/large/dogecoin.png",
	 "current_price": 0.0789, "market_cap": 11234567890, "market_cap_rank": 10, "price_change_percentage_24h": -0.89, "total_volume": 1100000000, "last_updated": "2024-01-01T00:00:00Z"}
]`

// MockProvider serves fixed sample data
type MockProvider struct{}

// NewMockProvider creates a MockProvider
func NewMockProvider() *MockProvider { return &MockProvider{} }

// Name implements Provider
func (MockProvider) Name() string { return "mock" }

// Global implements Provider
func (MockProvider) Global(ctx context.Context) (*types.GlobalSnapshot, error) {
	var raw rawGlobal
	if err := json.Unmarshal([]byte(mockGlobal), &raw); err != nil {
		return nil, fmt.Errorf("decode mock global data: %w", err)
	}
	return mapGlobal(&raw), nil
}

// TopAssets implements Provider
func (MockProvider) TopAssets(ctx context.Context) (types.AssetList, error) {
	var coins []rawCoin
	if err := json.Unmarshal([]byte(mockCoins), &coins); err != nil {
		return nil, fmt.Errorf("decode mock coin data: %w", err)
	}
	return mapCoins(coins), nil
}
