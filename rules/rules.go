// Package rules evaluates entry and exit condition lists against indicator
// values at a bar index. Evaluation is stateless and idempotent: the same
// conditions at the same index always produce the same answer.
//
// Composition is deliberately flat: when any node in the list declares an OR
// join the list is satisfied by any single true condition, otherwise every
// condition must hold. There is no precedence nesting between mixed AND/OR
// chains
package rules

import "github.com/tradelens/backtest/indicators"

// Evaluate folds the condition list at the bar index. An empty list is never
// satisfied
func Evaluate(cache *indicators.Cache, conditions []Condition, idx int) bool {
	if len(conditions) == 0 {
		return false
	}
	anyOr := false
	for x := range conditions {
		if x > 0 && conditions[x].Join == Or {
			anyOr = true
			break
		}
	}

	if anyOr {
		for x := range conditions {
			if evaluateOne(cache, &conditions[x], idx) {
				return true
			}
		}
		return false
	}
	for x := range conditions {
		if !evaluateOne(cache, &conditions[x], idx) {
			return false
		}
	}
	return true
}

// evaluateOne checks a single condition. Undefined indicator values never
// satisfy a comparator
func evaluateOne(cache *indicators.Cache, c *Condition, idx int) bool {
	v, ok := cache.Value(c.Indicator, idx)
	if !ok {
		return false
	}
	switch c.Comparator {
	case GreaterThan:
		return v > c.Threshold
	case LessThan:
		return v < c.Threshold
	case GreaterOrEqual:
		return v >= c.Threshold
	case LessOrEqual:
		return v <= c.Threshold
	case Equal:
		return v == c.Threshold
	case CrossesAbove:
		prev, ok := cache.Value(c.Indicator, idx-1)
		return ok && prev <= c.Threshold && v > c.Threshold
	case CrossesBelow:
		prev, ok := cache.Value(c.Indicator, idx-1)
		return ok && prev >= c.Threshold && v < c.Threshold
	default:
		return false
	}
}
