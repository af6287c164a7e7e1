// Package indicators evaluates named indicator series over a candle series.
// Values are float64 slices aligned with the input bars; leading bars inside
// an indicator's warm-up are NaN, the engine's "undefined" value. Per-bar
// computations that cannot produce a number (flat stochastic window, zero
// directional movement) also yield NaN rather than an error
package indicators

import (
	"math"

	ta "github.com/thrasher-corp/gct-ta/indicators"

	"github.com/tradelens/backtest/data/kline"
)

// Defined reports whether an indicator value is usable at a bar
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// series computes the full-length value slice for the spec. The spec must
// already be validated. Algorithms only consult bars at or before each output
// index, so evaluating index i never sees the future
func (s *Spec) series(o *kline.OHLC) []float64 {
	var out []float64
	switch s.Kind {
	case Price:
		out = append(out, o.Close...)
	case Volume:
		out = append(out, o.Volume...)
	case SMA:
		out = ta.SMA(o.Close, s.Period)
	case EMA:
		out = ta.EMA(o.Close, s.Period)
	case RSI:
		out = ta.RSI(o.Close, s.Period)
	case ATR:
		out = ta.ATR(o.High, o.Low, o.Close, s.Period)
	case OBV:
		out = ta.OBV(o.Close, o.Volume)
	case MFI:
		out = ta.MFI(o.High, o.Low, o.Close, o.Volume, s.Period)
	case MACD:
		line, signal, histogram := ta.MACD(o.Close, s.FastPeriod, s.SlowPeriod, s.SignalPeriod)
		switch s.Field {
		case FieldSignal:
			out = signal
		case FieldHistogram:
			out = histogram
		default:
			out = line
		}
	case Bollinger:
		upper, middle, lower := ta.BBANDS(o.Close, s.Period, s.StdDev, s.StdDev, ta.Sma)
		switch s.Field {
		case FieldUpper:
			out = upper
		case FieldLower:
			out = lower
		default:
			out = middle
		}
	case Stochastic:
		k, d := stochastic(o.High, o.Low, o.Close, s.KPeriod, s.DPeriod)
		if s.Field == FieldK {
			out = k
		} else {
			out = d
		}
	case ADX:
		out = adx(o.High, o.Low, o.Close, s.Period)
	}
	return maskWarmup(out, s.Warmup())
}

// maskWarmup overwrites the warm-up prefix with NaN so unseeded values can
// never satisfy a rule
func maskWarmup(values []float64, warmup int) []float64 {
	if warmup > len(values) {
		warmup = len(values)
	}
	for i := 0; i < warmup; i++ {
		values[i] = math.NaN()
	}
	return values
}
