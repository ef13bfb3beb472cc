// Package export writes the expense list as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"spendlog/internal/core"
)

// DateLayout is the short US date form used in the Date column.
const DateLayout = "1/2/2006"

// Header is the first CSV row.
var Header = []string{"Name", "Amount", "Category", "Date"}

// ErrNothingToExport is returned for an empty list.
var ErrNothingToExport = errors.New("no expenses to export")

// Filename returns expenses_<YYYY-MM-DD>.csv for the given day.
func Filename(now time.Time) string {
	return fmt.Sprintf("expenses_%s.csv", now.Format("2006-01-02"))
}

// Write serializes expenses in the given order. Dates are rendered in loc;
// a nil loc means time.Local.
func Write(w io.Writer, expenses []core.Expense, loc *time.Location) error {
	if len(expenses) == 0 {
		return ErrNothingToExport
	}
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		row := []string{
			e.Name,
			e.Amount.String(),
			string(e.Category),
			e.Date.In(loc).Format(DateLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the CSV into dir under Filename(now) and returns the path.
// The file is written to a temporary name first so a failed export never
// leaves a partial file behind.
func WriteFile(dir string, expenses []core.Expense, now time.Time) (string, error) {
	if len(expenses) == 0 {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, Filename(now))
	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, expenses, now.Location()); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
