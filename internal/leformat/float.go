package leformat

import "math"

func float64frombits(bits uint64) float64 {
	return math.Float64frombits(bits)
}
