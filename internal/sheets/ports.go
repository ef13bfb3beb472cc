// Package sheets defines the spreadsheet mirror the worker keeps in sync
// with expense events.
package sheets

import (
	"context"
	"errors"

	"spendlog/internal/core"
)

// ErrRowNotFound is returned by Delete when no row carries the ID.
var ErrRowNotFound = errors.New("expense row not found")

// Ports for outbound adapters.
type (
	ExpenseAppender interface {
		// Append adds one row for e and returns a reference to it.
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	ExpenseDeleter interface {
		// Delete removes the row whose first column equals id.
		Delete(ctx context.Context, id string) error
	}

	// ExpenseMirror is what the worker writes to.
	ExpenseMirror interface {
		ExpenseAppender
		ExpenseDeleter
	}
)

// Row renders an expense as spreadsheet cells: ID, Name, Amount, Category,
// Date (YYYY-MM-DD in the expense's own location).
func Row(e core.Expense) []string {
	return []string{
		e.ID,
		e.Name,
		e.Amount.String(),
		string(e.Category),
		e.Date.Format("2006-01-02"),
	}
}

// Header is the first row of a mirror sheet.
var Header = []string{"ID", "Name", "Amount", "Category", "Date"}
