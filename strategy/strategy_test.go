package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelens/backtest/indicators"
	"github.com/tradelens/backtest/rules"
)

func testStrategy() *Strategy {
	return &Strategy{
		Name: "rsi reversion",
		EntryRules: []rules.Condition{
			{
				Indicator:  indicators.Spec{Kind: indicators.RSI, Period: 14},
				Comparator: rules.LessThan,
				Threshold:  30,
			},
		},
		ExitRules: []rules.Condition{
			{
				Indicator:  indicators.Spec{Kind: indicators.RSI, Period: 14},
				Comparator: rules.CrossesAbove,
				Threshold:  70,
			},
		},
		Sizing:           PercentCapital,
		SizeValue:        decimal.NewFromInt(50),
		MaxOpenPositions: 1,
		InitialCapital:   decimal.NewFromInt(10000),
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, testStrategy().Validate())

	s := testStrategy()
	s.EntryRules = nil
	assert.ErrorIs(t, s.Validate(), ErrNoEntryRules)

	s = testStrategy()
	s.Sizing = SizingMode("MARTINGALE")
	assert.ErrorIs(t, s.Validate(), ErrInvalidSizingMode)

	s = testStrategy()
	s.SizeValue = decimal.Zero
	assert.ErrorIs(t, s.Validate(), errInvalidSizeValue)

	s = testStrategy()
	s.InitialCapital = decimal.NewFromInt(-1)
	assert.ErrorIs(t, s.Validate(), ErrInvalidInitialCapital)

	s = testStrategy()
	s.MaxOpenPositions = 0
	assert.ErrorIs(t, s.Validate(), errInvalidMaxPositions)

	s = testStrategy()
	s.SlippagePercent = decimal.NewFromInt(-1)
	assert.ErrorIs(t, s.Validate(), errNegativePercent)

	s = testStrategy()
	s.EntryRules[0].Comparator = rules.Comparator("!=")
	assert.Error(t, s.Validate())
}

func TestClone(t *testing.T) {
	t.Parallel()
	s := testStrategy()
	c := s.Clone()
	c.EntryRules[0].Threshold = 25
	c.ExitRules[0].Indicator.Period = 7
	c.StopLossPercent = decimal.NewFromInt(5)

	assert.Equal(t, 30.0, s.EntryRules[0].Threshold, "clone must not share rule storage")
	assert.Equal(t, 14, s.ExitRules[0].Indicator.Period)
	assert.True(t, s.StopLossPercent.IsZero())
}

func TestReferencedSpecs(t *testing.T) {
	t.Parallel()
	s := testStrategy()
	specs := s.ReferencedSpecs()
	require.Len(t, specs, 1, "identical entry and exit specs deduplicate")

	s.ExitRules[0].Indicator.Period = 7
	specs = s.ReferencedSpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, 14, specs[0].Period)
	assert.Equal(t, 7, specs[1].Period)
}

func TestWarmup(t *testing.T) {
	t.Parallel()
	s := testStrategy()
	// exit crosses needs one bar beyond the RSI warm-up
	assert.Equal(t, 15, s.Warmup())

	s.ExitRules = nil
	assert.Equal(t, 14, s.Warmup())
}

func TestApplyParameter(t *testing.T) {
	t.Parallel()
	s := testStrategy()

	require.NoError(t, s.ApplyParameter("stop_loss_percent", 5))
	assert.True(t, s.StopLossPercent.Equal(decimal.NewFromInt(5)))

	require.NoError(t, s.ApplyParameter("take_profit_percent", 10))
	assert.True(t, s.TakeProfitPercent.Equal(decimal.NewFromInt(10)))

	require.NoError(t, s.ApplyParameter("position_size_value", 25))
	assert.True(t, s.SizeValue.Equal(decimal.NewFromInt(25)))

	require.NoError(t, s.ApplyParameter("entry.0.threshold", 20))
	assert.Equal(t, 20.0, s.EntryRules[0].Threshold)

	require.NoError(t, s.ApplyParameter("entry.0.period", 21))
	assert.Equal(t, 21, s.EntryRules[0].Indicator.Period)

	require.NoError(t, s.ApplyParameter("exit.0.period", 9.4))
	assert.Equal(t, 9, s.ExitRules[0].Indicator.Period, "periods round to the nearest whole number")
}

func TestApplyParameterErrors(t *testing.T) {
	t.Parallel()
	s := testStrategy()

	assert.ErrorIs(t, s.ApplyParameter("leverage", 2), errUnknownParameter)
	assert.ErrorIs(t, s.ApplyParameter("entry.0.colour", 1), errUnknownParameter)
	assert.ErrorIs(t, s.ApplyParameter("between.0.threshold", 1), errUnknownParameter)
	assert.ErrorIs(t, s.ApplyParameter("entry.5.threshold", 1), errParameterOutOfRange)
	assert.ErrorIs(t, s.ApplyParameter("entry.x.threshold", 1), errParameterOutOfRange)
}
