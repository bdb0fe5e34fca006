package booking

import "math"

// EstimateCost returns the advisory range for a roof area, or nil without an area.
func EstimateCost(areaSqft, unitRate float64) *Estimate {
	if areaSqft <= 0 || unitRate <= 0 {
		return nil
	}
	base := areaSqft * unitRate
	return &Estimate{
		AreaSqft: areaSqft,
		Low:      int64(math.Round(base * 0.9)),
		High:     int64(math.Round(base * 1.1)),
	}
}
