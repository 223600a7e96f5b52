package quote

import (
	"github.com/shopspring/decimal"
)

const bpsDenominator = 10000

// DestMin computes the worst acceptable destination amount for a fixed-source
// swap: destAmount * (1 - slippageBps/10000).
func DestMin(destAmount decimal.Decimal, slippageBps uint16) decimal.Decimal {
	if slippageBps >= bpsDenominator {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(bpsDenominator - int64(slippageBps)).
		Div(decimal.NewFromInt(bpsDenominator))
	return destAmount.Mul(factor)
}

// SourceMax computes the worst acceptable source amount for a
// fixed-destination swap: sourceAmount * (1 + slippageBps/10000).
func SourceMax(sourceAmount decimal.Decimal, slippageBps uint16) decimal.Decimal {
	factor := decimal.NewFromInt(bpsDenominator + int64(slippageBps)).
		Div(decimal.NewFromInt(bpsDenominator))
	return sourceAmount.Mul(factor)
}

// ImpliedPrice is destAmount / sourceAmount at quote time.
func ImpliedPrice(sourceAmount, destAmount decimal.Decimal) decimal.Decimal {
	if sourceAmount.IsZero() {
		return decimal.Zero
	}
	return destAmount.DivRound(sourceAmount, 12)
}
