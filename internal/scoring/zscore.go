package scoring

import "math"

// ZScore converts one raw metric column, observed across the whole universe,
// into population z-scores ((v - mean) / std, ddof = 0). NaN inputs map to
// NaN outputs in place, so ticker order and count are preserved.
//
// A column with fewer than 2 valid values, or with zero standard deviation,
// carries no discriminating signal: every output is NaN so the composite
// mean can simply ignore it.
func ZScore(column []float64) []float64 {
	out := make([]float64, len(column))

	validCount := 0
	sum := 0.0
	for _, v := range column {
		if !math.IsNaN(v) {
			validCount++
			sum += v
		}
	}

	if validCount < 2 {
		return fillNaN(out)
	}

	mean := sum / float64(validCount)

	sumSquares := 0.0
	for _, v := range column {
		if !math.IsNaN(v) {
			diff := v - mean
			sumSquares += diff * diff
		}
	}

	// Population standard deviation
	sigma := math.Sqrt(sumSquares / float64(validCount))
	if sigma == 0 {
		return fillNaN(out)
	}

	for i, v := range column {
		if math.IsNaN(v) {
			out[i] = math.NaN()
		} else {
			out[i] = (v - mean) / sigma
		}
	}

	return out
}

// Invert flips the sign of every valid value. Applied before z-scoring to
// metrics where a smaller raw value is the more favorable one, so that
// "higher z-score = more favorable" holds across all composite inputs.
func Invert(column []float64) []float64 {
	out := make([]float64, len(column))
	for i, v := range column {
		out[i] = -v // -NaN is still NaN
	}
	return out
}

func fillNaN(out []float64) []float64 {
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
