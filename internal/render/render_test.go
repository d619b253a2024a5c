package render

import (
	"strings"
	"testing"
	"time"

	"github.com/insight-sphere/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGlobal() *types.GlobalSnapshot {
	return &types.GlobalSnapshot{
		TotalMarketCapUSD: types.NewAmount(2.35e12),
		TotalVolumeUSD:    types.NewAmount(98e9),
		BitcoinDominance:  types.NewAmount(55),
		EthereumDominance: types.NewAmount(18),
		ActiveAssets:      types.NewAmount(8947),
		Markets:           types.NewAmount(745),
	}
}

func sampleAssets() types.AssetList {
	return types.AssetList{
		{Rank: 1, Symbol: "BTC", Name: "Bitcoin", Image: "https://assets.example.com/btc.png",
			CurrentPrice: types.NewAmount(43250.5), MarketCap: types.NewAmount(847234567890),
			PriceChangePct24h: types.NewAmount(2.45), TotalVolume: types.NewAmount(23456789012)},
		{Rank: 2, Symbol: "ETH", Name: "Ethereum", Image: "",
			CurrentPrice: types.NewAmount(2678.9), MarketCap: types.NewAmount(321456789012),
			PriceChangePct24h: types.NewAmount(-1.23), TotalVolume: types.NewAmount(12345678901)},
		{Rank: 3, Symbol: "SHIB", Name: "Shiba Inu", Image: "::not a url",
			CurrentPrice: types.NewAmount(0.0001234), MarketCap: types.NewAmount(5e9),
			PriceChangePct24h: types.NewAmount(0), TotalVolume: types.NewAmount(4.2e8)},
	}
}

func TestMetrics(t *testing.T) {
	out := Metrics(sampleGlobal())

	assert.Contains(t, out, "$2.35T")
	assert.Contains(t, out, "$98.00B")
	assert.Contains(t, out, "55.0%")
	assert.Contains(t, out, "18.0%")
}

func TestMetrics_InvalidAmountsUsePlaceholder(t *testing.T) {
	g := sampleGlobal()
	g.TotalVolumeUSD = types.Amount{}

	out := Metrics(g)
	assert.Contains(t, out, "$2.35T")
	assert.Regexp(t, `24h Volume\s+-`, out)
}

func TestMarketStats(t *testing.T) {
	out := MarketStats(sampleGlobal())

	assert.Contains(t, out, "8,947")
	assert.Contains(t, out, "745")
	assert.Contains(t, out, "27.0%")
	assert.Contains(t, out, LiveMarker)
}

func TestMarketStats_ResidualClampedAtZero(t *testing.T) {
	g := sampleGlobal()
	g.BitcoinDominance = types.NewAmount(70)
	g.EthereumDominance = types.NewAmount(40)

	assert.Contains(t, MarketStats(g), "0.0%")
}

func TestStatus(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	out := Status(now, time.Minute)

	assert.Contains(t, out, "last updated 2026-10-16 09:30:00")
	assert.Contains(t, out, "next update 09:31:00")
}

func TestLogoMarker(t *testing.T) {
	tests := []struct {
		image string
		want  string
	}{
		{"https://assets.example.com/btc.png", LogoGlyph},
		{"http://cdn.example.com/eth.png", LogoGlyph},
		{"", PlaceholderGlyph},
		{"::not a url", PlaceholderGlyph},
		{"data:image/svg+xml;base64,AAAA", PlaceholderGlyph},
		{"/relative/logo.png", PlaceholderGlyph},
	}
	for _, tt := range tests {
		t.Run(tt.image, func(t *testing.T) {
			assert.Equal(t, tt.want, LogoMarker(tt.image))
		})
	}
}

func TestTableRows(t *testing.T) {
	rows := TableRows(sampleAssets())
	require.Len(t, rows, 3)

	assert.Equal(t, "#1", rows[0][0])
	assert.Equal(t, LogoGlyph, rows[0][1])
	assert.Contains(t, rows[0][2], "BTC")
	assert.Equal(t, "$43,250.50", rows[0][3])
	assert.Contains(t, rows[0][4], "+2.45%")
	assert.Equal(t, "$847.23B", rows[0][5])

	assert.Equal(t, PlaceholderGlyph, rows[1][1])
	assert.Contains(t, rows[1][4], "-1.23%")

	assert.Equal(t, PlaceholderGlyph, rows[2][1])
	assert.Equal(t, "$0.000123", rows[2][3])
	assert.Contains(t, rows[2][4], "+0.00%")
}

func TestTable_FullyReplacesPreviousRows(t *testing.T) {
	first := Table(sampleAssets())
	require.Contains(t, first, "BTC")

	second := Table(types.AssetList{
		{Rank: 1, Symbol: "SOL", Name: "Solana", CurrentPrice: types.NewAmount(98.45), MarketCap: types.NewAmount(42e9)},
	})

	assert.Contains(t, second, "SOL")
	for _, gone := range []string{"BTC", "ETH", "SHIB", "#2", "#3"} {
		assert.NotContains(t, second, gone)
	}
}

func TestTable_PreservesOrder(t *testing.T) {
	out := Table(sampleAssets())
	btc := strings.Index(out, "BTC")
	eth := strings.Index(out, "ETH")
	shib := strings.Index(out, "SHIB")

	assert.True(t, btc < eth && eth < shib, "rows must follow list order")
}
