package http

import (
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"spendlog/internal/core"
	"spendlog/internal/notify"
)

// listDateLayout is the date shown next to each expense.
const listDateLayout = "Jan 2, 2006"

// templateFuncs are available to every page and partial.
func templateFuncs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"money": formatMoney,
		"date":  func(t time.Time) string { return t.Local().Format(listDateLayout) },
		"ago":   func(t time.Time) string { return humanize.RelTime(t, now(), "ago", "from now") },
		"ttlMs": func(d time.Duration) int64 { return d.Milliseconds() },
	}
}

// formatMoney renders an amount with a dollar sign, thousands separators and
// two decimals, e.g. "$1,234.50".
func formatMoney(m core.Money) string {
	if m.Cents < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -m.Float())
	}
	return "$" + humanize.FormatFloat("#,###.##", m.Float())
}

// indexPage is the data for index.html.
type indexPage struct {
	Categories   []core.Category
	List         listPartial
	Summary      summaryPartial
	Notification *notify.Notification
	NotifyTTL    time.Duration
}

// listPartial is the data for expense_list.html.
type listPartial struct {
	Expenses []core.Expense
}

// summaryPartial is the data for summary.html.
type summaryPartial struct {
	Total     core.Money
	Breakdown []core.CategoryAmount
}

func newSummary(list []core.Expense) summaryPartial {
	return summaryPartial{
		Total:     core.GrandTotal(list),
		Breakdown: core.SortedTotals(core.CategoryTotals(list)),
	}
}

// EmptyText is shown when no expense passes the filters.
func (listPartial) EmptyText() string { return notify.MsgNoMatches }

// EmptyText is shown instead of an empty breakdown.
func (summaryPartial) EmptyText() string { return notify.MsgNoBreakdown }
