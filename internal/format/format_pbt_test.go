package format

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("currency is always symbol prefixed with two decimals", prop.ForAll(
		func(v float64) bool {
			s := Currency(v)
			if !strings.HasPrefix(s, CurrencySymbol) {
				return false
			}
			body := strings.TrimRight(strings.TrimPrefix(s, CurrencySymbol), "TBMK")
			dot := strings.LastIndex(body, ".")
			return dot >= 0 && len(body)-dot-1 == 2
		},
		gen.Float64Range(0, 1e15),
	))

	properties.Property("sub-unit prices keep six decimals and no grouping", prop.ForAll(
		func(v float64) bool {
			s := Price(v)
			return !strings.Contains(s, ",") && len(s) == len("0.000000")
		},
		gen.Float64Range(0, 0.999),
	))

	properties.Property("prices of at least one unit have two decimals", prop.ForAll(
		func(v float64) bool {
			s := Price(v)
			dot := strings.LastIndex(s, ".")
			return dot >= 0 && len(s)-dot-1 == 2
		},
		gen.Float64Range(1, 1e7),
	))

	properties.TestingRun(t)
}
