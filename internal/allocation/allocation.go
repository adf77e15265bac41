// Package allocation computes the per-payee monetary shares of an event's
// income. All functions are pure: they depend on nothing but their inputs
// and perform no I/O.
//
// Amounts (income, saving, extra) are int64 values in the smallest currency
// unit. The derived portion and totals are fixed-point decimals truncated
// to two places — truncation, never rounding up, so the sum of allocated
// shares never exceeds the money actually available.
package allocation

import "github.com/shopspring/decimal"

// Entry is one payee's stake used as input to the engine: a weighted share
// count and a fixed add-on.
type Entry struct {
	PayeeID string
	Factor  int64
	Extra   int64
}

// FactorSum returns the sum of all entry factors.
func FactorSum(entries []Entry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Factor
	}
	return sum
}

// ExtraSum returns the sum of all entry extras.
func ExtraSum(entries []Entry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Extra
	}
	return sum
}

// Portion computes the per-unit share for an event:
//
//	portion = trunc2((income - extraSum - saving) / factorSum)
//
// A factor sum of zero is treated as one so the portion stays defined when
// every entry has factor 0 (it then equals the full remaining amount);
// callers wanting a meaningful split should require at least one non-zero
// factor. The result is negative when extras plus saving exceed income —
// callers must reject such an edit before persisting anything.
func Portion(saving int64, entries []Entry, income int64) decimal.Decimal {
	factorSum := FactorSum(entries)
	if factorSum == 0 {
		factorSum = 1
	}
	remaining := decimal.NewFromInt(income - ExtraSum(entries) - saving)
	return remaining.Div(decimal.NewFromInt(factorSum)).RoundDown(2)
}

// Saving computes the saving implied by a given portion: the income left
// over once every entry's total is paid out, truncated to two places.
// Negative results mean the portion is too generous for the income and the
// edit must be rejected.
func Saving(portion decimal.Decimal, entries []Entry, income int64) decimal.Decimal {
	totalSum := decimal.Zero
	for _, e := range entries {
		totalSum = totalSum.Add(Total(portion, e.Factor, e.Extra))
	}
	return decimal.NewFromInt(income).Sub(totalSum).RoundDown(2)
}

// Total computes the amount one payee owes for an event:
//
//	total = portion*factor + extra
func Total(portion decimal.Decimal, factor, extra int64) decimal.Decimal {
	return portion.Mul(decimal.NewFromInt(factor)).Add(decimal.NewFromInt(extra))
}
