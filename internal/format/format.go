// Package format turns raw market numbers into display strings.
// All functions are pure and safe for concurrent use.
package format

import (
	"math"

	"github.com/insight-sphere/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown in place of a value that could not be decoded
const Placeholder = "-"

// CurrencySymbol prefixes every currency value
const CurrencySymbol = "$"

var printer = message.NewPrinter(language.English)

type magnitude struct {
	threshold float64
	suffix    string
}

var magnitudes = []magnitude{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// fixed rounds half away from zero and renders exactly places decimals
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Currency abbreviates v by magnitude: $2.50T, $3.40B, $1.20M, $4.00K, $950.00
func Currency(v float64) string {
	for _, m := range magnitudes {
		if v >= m.threshold {
			return CurrencySymbol + fixed(v/m.threshold, 2) + m.suffix
		}
	}
	return CurrencySymbol + fixed(v, 2)
}

// Price renders a unit price without the currency symbol.
// Prices of at least one unit are grouped with 2 decimals; sub-unit prices keep
// 6 decimals and no grouping.
func Price(v float64) string {
	if v >= 1 {
		rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
		return printer.Sprintf("%.2f", rounded)
	}
	return fixed(v, 6)
}

// Count renders an integer count with thousands grouping
func Count(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// USD renders a whole-dollar amount with grouping, e.g. $847,234,567,890
func USD(v float64) string {
	return CurrencySymbol + Count(v)
}

// Percent renders v with the given number of decimals and a % suffix
func Percent(v float64, places int32) string {
	return fixed(v, places) + "%"
}

// SignedPercent renders a change with an explicit + for non-negative values
func SignedPercent(v float64) string {
	if v >= 0 {
		return "+" + Percent(v, 2)
	}
	return Percent(v, 2)
}

// Maybe applies fn to a valid amount and returns Placeholder otherwise
func Maybe(a types.Amount, fn func(float64) string) string {
	if !a.Valid {
		return Placeholder
	}
	return fn(a.Value)
}
