// MIT License
//
// Copyright 2019 Burst Apps Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package burst

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Decimals is the number of decimal places of a Value.
const Decimals = 8

// PlanckPerBurst is the number of planck in one BURST.
const PlanckPerBurst = 100000000

// Value is an amount of BURST stored as an integer number of planck, the
// smallest unit. Conversions never round implicitly.
type Value uint64

// FromPlanck returns the Value of the given number of planck.
func FromPlanck(planck uint64) Value {
	return Value(planck)
}

// FromBurst returns the Value of a whole number of BURST.
func FromBurst(burst uint64) Value {
	return Value(burst * PlanckPerBurst)
}

// ParseValue parses a decimal amount of BURST such as "1.5" or
// "0.00735000". Amounts with more than 8 decimal places, negative amounts,
// and amounts exceeding the maximum transferable value are rejected.
func ParseValue(s string) (Value, error) {
	return parseValue(s, false)
}

// ParseValueTruncate is like ParseValue but explicitly truncates any decimal
// places beyond the 8th instead of rejecting them.
func ParseValueTruncate(s string) (Value, error) {
	return parseValue(s, true)
}

func parseValue(s string, truncate bool) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q: %v", ErrInvalidArgument, s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: value %q: negative", ErrInvalidArgument, s)
	}
	planck := d.Shift(Decimals)
	if !planck.IsInteger() {
		if !truncate {
			return 0, fmt.Errorf("%w: value %q: more than %v decimal places",
				ErrInvalidArgument, s, Decimals)
		}
		planck = planck.Truncate(0)
	}
	if planck.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: value %q: overflow", ErrInvalidArgument, s)
	}
	return Value(planck.IntPart()), nil
}

// Planck returns v as an integer number of planck.
func (v Value) Planck() uint64 {
	return uint64(v)
}

// Decimal returns v as an exact decimal number of BURST.
func (v Value) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), -Decimals)
}

// String returns v in BURST with exactly 8 decimal places, e.g.
// "1.00000000".
func (v Value) String() string {
	return v.Decimal().StringFixed(Decimals)
}

// Add returns v + w. The boolean is false if the sum overflows.
func (v Value) Add(w Value) (Value, bool) {
	sum := v + w
	if sum < v || sum > math.MaxInt64 {
		return 0, false
	}
	return sum, true
}

// Mul returns v * n. The boolean is false if the product overflows.
func (v Value) Mul(n uint64) (Value, bool) {
	if n == 0 || v == 0 {
		return 0, true
	}
	product := uint64(v) * n
	if product/n != uint64(v) || product > math.MaxInt64 {
		return 0, false
	}
	return Value(product), true
}

// MarshalJSON encodes v as its number of planck in a JSON string, as the node
// does for all "NQT" fields.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(v), 10))), nil
}

// UnmarshalJSON decodes a number of planck from a JSON string or number.
func (v *Value) UnmarshalJSON(data []byte) error {
	s, err := numericString(data)
	if err != nil {
		return fmt.Errorf("%T: %w", v, err)
	}
	planck, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%T: %w", v, err)
	}
	*v = Value(planck)
	return nil
}
