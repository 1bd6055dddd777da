package ledger

import "math"

// SizeOrder applies the entry sizing policy: spend at most maxFraction of the
// period limit, floor to whole shares with a minimum of one, and reject rather
// than silently downsize when the rounded cost exceeds the remaining balance.
func SizeOrder(remaining, periodLimit, maxFraction, price float64) (qty int, cost float64, ok bool) {
	if price <= 0 || maxFraction <= 0 || remaining <= epsilon {
		return 0, 0, false
	}
	spend := periodLimit * maxFraction
	if remaining < spend {
		spend = remaining
	}
	qty = int(math.Floor(spend / price))
	if qty < 1 {
		qty = 1
	}
	cost = float64(qty) * price
	if cost > remaining+epsilon {
		return 0, 0, false
	}
	return qty, cost, true
}
