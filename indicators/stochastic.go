package indicators

import "math"

// stochastic returns the %K and %D oscillator series. %K compares the close
// against the high/low range of the trailing kPeriod bars; %D is a simple
// moving average of %K over dPeriod bars. A flat range leaves %K undefined
// for that bar
func stochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(close)
	k = make([]float64, n)
	d = make([]float64, n)
	for i := 0; i < n; i++ {
		k[i] = math.NaN()
		d[i] = math.NaN()
	}

	for i := kPeriod - 1; i < n; i++ {
		highest := high[i]
		lowest := low[i]
		for j := i - kPeriod + 1; j < i; j++ {
			if high[j] > highest {
				highest = high[j]
			}
			if low[j] < lowest {
				lowest = low[j]
			}
		}
		if highest == lowest {
			continue
		}
		k[i] = 100 * (close[i] - lowest) / (highest - lowest)
	}

	for i := kPeriod + dPeriod - 2; i < n; i++ {
		var sum float64
		defined := true
		for j := i - dPeriod + 1; j <= i; j++ {
			if math.IsNaN(k[j]) {
				defined = false
				break
			}
			sum += k[j]
		}
		if defined {
			d[i] = sum / float64(dPeriod)
		}
	}
	return k, d
}
