package models

import (
	"strconv"
	"time"
)

// BillingPeriod is a named month in the billing calendar.
type BillingPeriod string

// The twelve billing periods of a year.
const (
	PeriodJanuary   BillingPeriod = "January"
	PeriodFebruary  BillingPeriod = "February"
	PeriodMarch     BillingPeriod = "March"
	PeriodApril     BillingPeriod = "April"
	PeriodMay       BillingPeriod = "May"
	PeriodJune      BillingPeriod = "June"
	PeriodJuly      BillingPeriod = "July"
	PeriodAugust    BillingPeriod = "August"
	PeriodSeptember BillingPeriod = "September"
	PeriodOctober   BillingPeriod = "October"
	PeriodNovember  BillingPeriod = "November"
	PeriodDecember  BillingPeriod = "December"
)

var periodOrder = []BillingPeriod{
	PeriodJanuary, PeriodFebruary, PeriodMarch, PeriodApril,
	PeriodMay, PeriodJune, PeriodJuly, PeriodAugust,
	PeriodSeptember, PeriodOctober, PeriodNovember, PeriodDecember,
}

// PeriodIndex returns the zero-based position of the period in the year, or
// -1 for an unknown name.
func PeriodIndex(p BillingPeriod) int {
	for i, candidate := range periodOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// PeriodAt returns the period at the given index, wrapping around year
// boundaries in both directions.
func PeriodAt(index int) BillingPeriod {
	index %= len(periodOrder)
	if index < 0 {
		index += len(periodOrder)
	}
	return periodOrder[index]
}

// PeriodKey identifies one billing period of one year. The zero-based Index
// plus the Year form a total order, so keys compare across year boundaries.
type PeriodKey struct {
	Year  int
	Index int
}

// NewPeriodKey builds a key from a period name and year.
func NewPeriodKey(period BillingPeriod, year int) PeriodKey {
	return PeriodKey{Year: year, Index: PeriodIndex(period)}
}

// Period returns the period name of the key.
func (k PeriodKey) Period() BillingPeriod {
	return PeriodAt(k.Index)
}

// Label renders the key for display, e.g. "April 2026".
func (k PeriodKey) Label() string {
	return string(k.Period()) + " " + strconv.Itoa(k.Year)
}

// Ordinal maps the key onto a single integer axis.
func (k PeriodKey) Ordinal() int {
	return k.Year*12 + k.Index
}

// Before reports whether k precedes other.
func (k PeriodKey) Before(other PeriodKey) bool {
	return k.Ordinal() < other.Ordinal()
}

// After reports whether k follows other.
func (k PeriodKey) After(other PeriodKey) bool {
	return k.Ordinal() > other.Ordinal()
}

// Add returns the key n periods later, carrying years as needed. Negative n
// moves backwards.
func (k PeriodKey) Add(n int) PeriodKey {
	ordinal := k.Ordinal() + n
	year := ordinal / 12
	index := ordinal % 12
	if index < 0 {
		index += 12
		year--
	}
	return PeriodKey{Year: year, Index: index}
}

// PeriodOf maps a point in time onto its billing period.
func PeriodOf(t time.Time) PeriodKey {
	return PeriodKey{Year: t.Year(), Index: int(t.Month()) - 1}
}

// CurrentPeriod returns the billing period containing now.
func CurrentPeriod(now time.Time) PeriodKey {
	return PeriodOf(now)
}

// PeriodsBetween returns every key from from to to inclusive, in calendar
// order. It returns nil when to precedes from.
func PeriodsBetween(from, to PeriodKey) []PeriodKey {
	if to.Before(from) {
		return nil
	}
	keys := make([]PeriodKey, 0, to.Ordinal()-from.Ordinal()+1)
	for key := from; !to.Before(key); key = key.Add(1) {
		keys = append(keys, key)
	}
	return keys
}
