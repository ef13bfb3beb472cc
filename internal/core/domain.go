package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Health        Category = "Health"
	Other         Category = "Other"
)

type (
	// Category is one of the fixed expense categories.
	Category string

	Money struct {
		Cents int64
	}

	Expense struct {
		ID       string    `json:"id"`
		Name     string    `json:"name"`
		Amount   Money     `json:"amount"`
		Category Category  `json:"category"`
		Date     time.Time `json:"date"`
	}
)

// Validation errors. Their messages are shown to the user as-is.
var (
	ErrEmptyName       = errors.New("Please enter an expense name")
	ErrInvalidAmount   = errors.New("Please enter a valid amount greater than 0")
	ErrMissingCategory = errors.New("Please select a category")
	ErrUnknownCategory = errors.New("Please select a valid category")
)

// Categories returns the selectable categories in display order.
func Categories() []Category {
	return []Category{Food, Transport, Entertainment, Shopping, Bills, Health, Other}
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	switch c {
	case Food, Transport, Entertainment, Shopping, Bills, Health, Other:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// Slug returns the lowercase form used for CSS classes.
func (c Category) Slug() string {
	return strings.ToLower(string(c))
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateInput checks raw form values in order and reports only the first
// failing check. On success it returns the trimmed name, parsed amount and
// category.
func ValidateInput(name, amount, category string) (string, Money, Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Money{}, "", ErrEmptyName
	}
	m, err := ParseAmount(amount)
	if err != nil {
		return "", Money{}, "", ErrInvalidAmount
	}
	c := Category(strings.TrimSpace(category))
	if c == "" {
		return "", Money{}, "", ErrMissingCategory
	}
	if !c.IsValid() {
		return "", Money{}, "", ErrUnknownCategory
	}
	return name, m, c, nil
}

// NewExpense builds an expense stamped with a random ID and the given
// creation time. Inputs are expected to be validated already.
func NewExpense(name string, amount Money, category Category, now time.Time) Expense {
	return Expense{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Amount:   amount,
		Category: category,
		Date:     now,
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(string(e.Category)) == "" {
		return ErrMissingCategory
	}
	return nil
}
