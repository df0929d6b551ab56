package risk

import "math"

// OrderQty sizes a new position: spend the fixed per-stock amount,
// net of fees, at the given price, floored to whole shares. A result
// of 0 means the buy must be skipped.
func OrderQty(fixedAmount, feeRate, price float64) int64 {
	if price <= 0 || fixedAmount <= 0 {
		return 0
	}
	return int64(math.Floor(fixedAmount * (1 - feeRate) / price))
}
