package util

import "math"

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PercentRounded returns round(num/den*100), or 0 when den is zero.
func PercentRounded(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	return int64(math.Round(float64(num) / float64(den) * 100))
}
