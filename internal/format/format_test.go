package format

import (
	"testing"

	"github.com/insight-sphere/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "trillions", value: 2.5e12, want: "$2.50T"},
		{name: "billions", value: 3.4e9, want: "$3.40B"},
		{name: "millions", value: 1_234_567, want: "$1.23M"},
		{name: "thousands", value: 4_000, want: "$4.00K"},
		{name: "below a thousand", value: 950, want: "$950.00"},
		{name: "zero", value: 0, want: "$0.00"},
		{name: "boundary is inclusive", value: 1e9, want: "$1.00B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.value))
		})
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "grouped above one unit", value: 1234.5, want: "1,234.50"},
		{name: "large price", value: 43250.5, want: "43,250.50"},
		{name: "exactly one", value: 1, want: "1.00"},
		{name: "sub unit keeps six decimals", value: 0.0001234, want: "0.000123"},
		{name: "sub unit", value: 0.5234, want: "0.523400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.value))
		})
	}
}

func TestCountAndUSD(t *testing.T) {
	assert.Equal(t, "8,947", Count(8947))
	assert.Equal(t, "745", Count(745))
	assert.Equal(t, "$847,234,567,890", USD(847234567890))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "27.0%", Percent(27, 1))
	assert.Equal(t, "42.3%", Percent(42.3, 1))
	assert.Equal(t, "+2.45%", SignedPercent(2.45))
	assert.Equal(t, "+0.00%", SignedPercent(0))
	assert.Equal(t, "-1.23%", SignedPercent(-1.23))
}

func TestMaybe(t *testing.T) {
	assert.Equal(t, Placeholder, Maybe(types.Amount{}, Currency))
	assert.Equal(t, "$950.00", Maybe(types.NewAmount(950), Currency))
}
