// Package numeral converts Chinese numerals, common and financial forms, to integers.
package numeral

import (
	"errors"
	"fmt"
)

var values = map[rune]int64{
	'零': 0, '〇': 0,
	'一': 1, '壹': 1,
	'二': 2, '貳': 2, '兩': 2,
	'三': 3, '參': 3,
	'四': 4, '肆': 4,
	'五': 5, '伍': 5,
	'六': 6, '陸': 6,
	'七': 7, '柒': 7,
	'八': 8, '捌': 8,
	'九': 9, '玖': 9,
	'十': 10, '拾': 10,
	'百': 100, '佰': 100,
	'千': 1000, '仟': 1000,
	'萬': 10000,
}

// Characters is every rune ToInt recognizes, for building regexp classes.
const Characters = "零〇一壹二貳兩三參四肆五伍六陸七柒八捌九玖十拾百佰千仟萬"

var (
	ErrNoDigits  = errors.New("no numeral characters")
	ErrUnitOrder = errors.New("unit characters out of order")
)

// ToInt scans s right to left, scaling digits by the nearest unit to their right.
// A unit with no digit to its left counts as one of itself (十 = 10). A unit not
// larger than the current one is folded into the last magnitude by addition.
// Unknown runes are skipped. Returns 0 when nothing is recognized, so callers
// must rely on their own match to tell zero from absent.
func ToInt(s string) int64 {
	rs := []rune(s)
	var unit int64
	var mags []int64
	implicit := false // last magnitude is a bare unit awaiting its digit
	for i := len(rs) - 1; i >= 0; i-- {
		v, ok := values[rs[i]]
		if !ok {
			continue
		}
		if v >= 10 {
			if v > unit || len(mags) == 0 {
				unit = v
				mags = append(mags, v)
				implicit = true
			} else {
				mags[len(mags)-1] += v
				implicit = false
			}
			continue
		}
		switch {
		case unit > 0 && implicit:
			mags[len(mags)-1] = v * unit
			implicit = false
		case unit > 0:
			mags = append(mags, v*unit)
		default:
			mags = append(mags, v)
		}
	}
	var sum int64
	for _, m := range mags {
		sum += m
	}
	return sum
}

// Validate checks that s holds at least one numeral and that its units
// appear in strictly decreasing order left to right (萬 > 千 > 百 > 十).
// ToInt gives unspecified results for inputs Validate rejects.
func Validate(s string) error {
	var last int64
	seen := false
	for _, r := range s {
		v, ok := values[r]
		if !ok {
			continue
		}
		seen = true
		if v < 10 {
			continue
		}
		if last != 0 && v >= last {
			return fmt.Errorf("%w: %q", ErrUnitOrder, s)
		}
		last = v
	}
	if !seen {
		return fmt.Errorf("%w: %q", ErrNoDigits, s)
	}
	return nil
}
