package indicators

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned for indicator kinds outside the supported set
	ErrUnknownKind = errors.New("unknown indicator kind")
	// ErrInsufficientData is returned when a series is too short to warm an
	// indicator up
	ErrInsufficientData = errors.New("insufficient candles to warm up indicator")

	errInvalidPeriod = errors.New("invalid period")
	errInvalidDev    = errors.New("invalid deviation multiplier")
	errInvalidField  = errors.New("invalid field for indicator kind")
)

// Kind enumerates every indicator the engine can evaluate. The set is closed:
// Spec.Validate rejects anything else before a simulation starts
type Kind string

// Supported indicator kinds
const (
	Price      Kind = "PRICE"
	Volume     Kind = "VOLUME"
	SMA        Kind = "SMA"
	EMA        Kind = "EMA"
	RSI        Kind = "RSI"
	MACD       Kind = "MACD"
	Bollinger  Kind = "BOLLINGER"
	Stochastic Kind = "STOCHASTIC"
	ATR        Kind = "ATR"
	ADX        Kind = "ADX"
	OBV        Kind = "OBV"
	MFI        Kind = "MFI"
)

// Field selects one output of a multi-output indicator. Single-output kinds
// leave it unset
type Field string

// Fields for MACD, Bollinger and Stochastic outputs
const (
	FieldUnset     Field = ""
	FieldLine      Field = "LINE"
	FieldSignal    Field = "SIGNAL"
	FieldHistogram Field = "HISTOGRAM"
	FieldUpper     Field = "UPPER"
	FieldMiddle    Field = "MIDDLE"
	FieldLower     Field = "LOWER"
	FieldK         Field = "K"
	FieldD         Field = "D"
)

// Spec fully identifies one indicator series: its kind, parameters and, for
// multi-output kinds, the selected output. Spec is a comparable value and is
// the cache key for computed series
type Spec struct {
	Kind         Kind    `json:"kind"`
	Period       int     `json:"period,omitempty"`
	FastPeriod   int     `json:"fastPeriod,omitempty"`
	SlowPeriod   int     `json:"slowPeriod,omitempty"`
	SignalPeriod int     `json:"signalPeriod,omitempty"`
	KPeriod      int     `json:"kPeriod,omitempty"`
	DPeriod      int     `json:"dPeriod,omitempty"`
	StdDev       float64 `json:"stdDev,omitempty"`
	Field        Field   `json:"field,omitempty"`
}

// Validate exhaustively checks the spec's kind and parameters
func (s *Spec) Validate() error {
	switch s.Kind {
	case Price, Volume, OBV:
		if s.Field != FieldUnset {
			return fmt.Errorf("%w: %v has no fields", errInvalidField, s.Kind)
		}
	case SMA, EMA, RSI, ATR, ADX, MFI:
		if s.Period < 1 {
			return fmt.Errorf("%v %w: %d", s.Kind, errInvalidPeriod, s.Period)
		}
		if s.Field != FieldUnset {
			return fmt.Errorf("%w: %v has no fields", errInvalidField, s.Kind)
		}
	case MACD:
		if s.FastPeriod < 1 || s.SlowPeriod <= s.FastPeriod || s.SignalPeriod < 1 {
			return fmt.Errorf("MACD %w: fast %d slow %d signal %d",
				errInvalidPeriod, s.FastPeriod, s.SlowPeriod, s.SignalPeriod)
		}
		switch s.Field {
		case FieldUnset, FieldLine, FieldSignal, FieldHistogram:
		default:
			return fmt.Errorf("%w: MACD has no field %q", errInvalidField, s.Field)
		}
	case Bollinger:
		if s.Period < 2 {
			return fmt.Errorf("bollinger %w: %d", errInvalidPeriod, s.Period)
		}
		if s.StdDev <= 0 {
			return fmt.Errorf("bollinger %w: %v", errInvalidDev, s.StdDev)
		}
		switch s.Field {
		case FieldUnset, FieldUpper, FieldMiddle, FieldLower:
		default:
			return fmt.Errorf("%w: bollinger has no field %q", errInvalidField, s.Field)
		}
	case Stochastic:
		if s.KPeriod < 1 || s.DPeriod < 1 {
			return fmt.Errorf("stochastic %w: k %d d %d", errInvalidPeriod, s.KPeriod, s.DPeriod)
		}
		switch s.Field {
		case FieldUnset, FieldK, FieldD:
		default:
			return fmt.Errorf("%w: stochastic has no field %q", errInvalidField, s.Field)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownKind, s.Kind)
	}
	return nil
}

// Warmup returns the number of leading bars with no defined value for the
// spec. The value at index Warmup() is the first defined one
func (s *Spec) Warmup() int {
	switch s.Kind {
	case Price, Volume, OBV:
		return 0
	case SMA, EMA, Bollinger:
		return s.Period - 1
	case RSI, ATR, MFI:
		return s.Period
	case MACD:
		return s.SlowPeriod + s.SignalPeriod - 2
	case Stochastic:
		d := s.DPeriod
		if s.Field == FieldK {
			d = 1
		}
		return s.KPeriod + d - 2
	case ADX:
		return 2*s.Period - 1
	default:
		return 0
	}
}

func (s Spec) String() string {
	switch s.Kind {
	case MACD:
		return fmt.Sprintf("MACD(%d,%d,%d)%s", s.FastPeriod, s.SlowPeriod, s.SignalPeriod, fieldSuffix(s.Field))
	case Bollinger:
		return fmt.Sprintf("BOLLINGER(%d,%g)%s", s.Period, s.StdDev, fieldSuffix(s.Field))
	case Stochastic:
		return fmt.Sprintf("STOCHASTIC(%d,%d)%s", s.KPeriod, s.DPeriod, fieldSuffix(s.Field))
	case Price, Volume, OBV:
		return string(s.Kind)
	default:
		return fmt.Sprintf("%v(%d)", s.Kind, s.Period)
	}
}

func fieldSuffix(f Field) string {
	if f == FieldUnset {
		return ""
	}
	return "." + string(f)
}
