package core

import (
	"sort"
	"strings"
	"time"
)

// DateRange narrows a view to recent expenses. The empty value disables it.
type DateRange string

const (
	AllTime   DateRange = ""
	Today     DateRange = "today"
	LastWeek  DateRange = "week"
	LastMonth DateRange = "month"
)

// ParseDateRange maps a filter value to a DateRange. Unknown values mean no
// date filter.
func ParseDateRange(s string) DateRange {
	switch r := DateRange(strings.ToLower(strings.TrimSpace(s))); r {
	case Today, LastWeek, LastMonth:
		return r
	default:
		return AllTime
	}
}

// Filter holds the current filter selections. Zero value passes everything.
type Filter struct {
	Category Category
	Range    DateRange
	// Match is an optional extra predicate, e.g. a compiled query expression.
	Match func(Expense) bool
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// FilteredView returns the expenses matching f, newest first. The input slice
// is not modified.
func FilteredView(expenses []Expense, f Filter, now time.Time) []Expense {
	today := startOfDay(now)
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if !inRange(e.Date, f.Range, today) {
			continue
		}
		if f.Match != nil && !f.Match(e) {
			continue
		}
		out = append(out, e)
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst sorts in place by date descending, keeping insertion order
// for equal dates.
func SortNewestFirst(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
}

// inRange compares calendar days in the location of today.
func inRange(date time.Time, r DateRange, today time.Time) bool {
	day := startOfDay(date.In(today.Location()))
	switch r {
	case Today:
		return day.Equal(today)
	case LastWeek:
		return !day.Before(today.AddDate(0, 0, -7))
	case LastMonth:
		return !day.Before(today.AddDate(0, -1, 0))
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CategoryTotals sums amounts grouped by category.
func CategoryTotals(expenses []Expense) map[Category]Money {
	totals := make(map[Category]Money)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

// SortedTotals returns the category totals ordered by descending amount,
// ties broken by category name.
func SortedTotals(totals map[Category]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(totals))
	for c, m := range totals {
		out = append(out, CategoryAmount{Category: c, Amount: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// GrandTotal sums every amount regardless of filters.
func GrandTotal(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
