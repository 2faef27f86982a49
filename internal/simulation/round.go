package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrOutOfRange reports a computed amount that is not finite or does not fit in int64.
var ErrOutOfRange = errors.New("value out of range")

var (
	maxWhole = decimal.NewFromInt(math.MaxInt64)
	minWhole = decimal.NewFromInt(math.MinInt64)
)

// roundWhole rounds to a whole number (currency units or visits), half to even.
func roundWhole(x float64) (int64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, x)
	}
	return checkedInt(decimal.NewFromFloat(x).RoundBank(0))
}

// sumWhole adds whole amounts without wrapping.
func sumWhole(parts ...int64) (int64, error) {
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(decimal.NewFromInt(p))
	}
	return checkedInt(total)
}

func checkedInt(d decimal.Decimal) (int64, error) {
	if d.GreaterThan(maxWhole) || d.LessThan(minWhole) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d.String())
	}
	return d.IntPart(), nil
}

// roundTo rounds x to the given number of decimal places, half to even.
func roundTo(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(x).RoundBank(places).Float64()
	return f
}

// wholeRounder keeps the first rounding failure so a row can be built in one pass.
type wholeRounder struct {
	err error
}

func (r *wholeRounder) round(field string, x float64) int64 {
	if r.err != nil {
		return 0
	}
	v, err := roundWhole(x)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", field, err)
	}
	return v
}
