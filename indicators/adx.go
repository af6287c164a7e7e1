package indicators

import "math"

// adx returns the Average Directional Index using Wilder smoothing. The first
// defined value sits at index 2*period-1; bars where total directional
// movement is zero leave DX undefined and carry the prior ADX forward
func adx(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if n < 2*period || period < 1 {
		return out
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
		tr[i] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-close[i-1]), math.Abs(low[i]-close[i-1])))
	}

	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := make([]float64, n)
	for i := range dx {
		dx[i] = math.NaN()
	}
	dx[period] = directionalIndex(smPlus, smMinus, smTR)
	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/float64(period) + tr[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		dx[i] = directionalIndex(smPlus, smMinus, smTR)
	}

	// seed ADX with the arithmetic mean of the first period DX values, then
	// apply Wilder smoothing
	var sum float64
	count := 0
	for i := period; i < 2*period && i < n; i++ {
		if !math.IsNaN(dx[i]) {
			sum += dx[i]
			count++
		}
	}
	if count == 0 {
		return out
	}
	out[2*period-1] = sum / float64(count)
	for i := 2 * period; i < n; i++ {
		prev := out[i-1]
		if math.IsNaN(dx[i]) {
			out[i] = prev
			continue
		}
		out[i] = (prev*float64(period-1) + dx[i]) / float64(period)
	}
	return out
}

func directionalIndex(smPlus, smMinus, smTR float64) float64 {
	if smTR == 0 {
		return math.NaN()
	}
	plusDI := 100 * smPlus / smTR
	minusDI := 100 * smMinus / smTR
	if plusDI+minusDI == 0 {
		return math.NaN()
	}
	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}
