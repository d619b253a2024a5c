package types

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAmountProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid amounts survive a JSON round trip", prop.ForAll(
		func(v float64) bool {
			out, err := json.Marshal(NewAmount(v))
			if err != nil {
				return false
			}
			var back Amount
			if err := json.Unmarshal(out, &back); err != nil {
				return false
			}
			return back.Valid && back.Value == v
		},
		gen.Float64Range(-1e15, 1e15),
	))

	properties.Property("residual dominance is never negative", prop.ForAll(
		func(btc, eth float64) bool {
			g := GlobalSnapshot{BitcoinDominance: NewAmount(btc), EthereumDominance: NewAmount(eth)}
			share, _ := g.OtherDominance()
			return share >= 0
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
