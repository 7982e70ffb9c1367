package checkout

import "math"

// Round2 rounds a monetary amount to 2 decimal places, half away from zero.
// Every amount is rounded before storage or comparison so floating-point
// drift cannot accumulate across subtotal/discount/shipping/total math.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsValidAmount reports whether v is a usable positive monetary amount.
// NaN, infinities and non-positive values indicate corrupted data upstream
// (e.g. a cart item with a broken price) and must never reach an order row.
func IsValidAmount(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v > 0
}
