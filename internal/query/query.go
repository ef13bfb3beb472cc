// Package query compiles user-supplied filter expressions into expense
// predicates.
//
// Expressions use expr-lang syntax over these variables:
//
//	name      string
//	amount    float64 (currency units)
//	category  string
//	date      time.Time
//	age_days  int, whole days since the expense was created
//
// Example: amount > 10 && category == "Food"
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"spendlog/internal/cache"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
)

// MaxLength bounds the accepted expression size.
const MaxLength = 256

// ErrInvalidQuery wraps every compile failure.
var ErrInvalidQuery = errors.New("invalid filter expression")

// Compiler turns expressions into predicates, caching compiled programs.
type Compiler struct {
	programs *cache.LRUCache[*vm.Program]
	logger   *applog.Logger
}

// NewCompiler creates a compiler with a program cache of the given size.
func NewCompiler(size int, ttl time.Duration, logger *applog.Logger) *Compiler {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Compiler{
		programs: cache.NewLRUCache[*vm.Program](size, ttl),
		logger:   logger.WithComponent(applog.ComponentQuery),
	}
}

// Cache exposes the program cache so it can be swept.
func (c *Compiler) Cache() *cache.LRUCache[*vm.Program] {
	return c.programs
}

func sampleEnv() map[string]any {
	return map[string]any{
		"name":     "",
		"amount":   0.0,
		"category": "",
		"date":     time.Time{},
		"age_days": 0,
	}
}

func env(e core.Expense, now time.Time) map[string]any {
	return map[string]any{
		"name":     e.Name,
		"amount":   e.Amount.Float(),
		"category": string(e.Category),
		"date":     e.Date,
		"age_days": ageDays(e.Date, now),
	}
}

// ageDays counts calendar days between date and now, both taken in now's
// location.
func ageDays(date, now time.Time) int {
	date = date.In(now.Location())
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(n.Sub(d).Hours() / 24)
}

// Compile returns a predicate for expression. An empty expression yields a
// nil predicate, which core.Filter treats as match-all.
func (c *Compiler) Compile(expression string, now time.Time) (func(core.Expense) bool, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}
	if len(expression) > MaxLength {
		return nil, fmt.Errorf("%w: longer than %d characters", ErrInvalidQuery, MaxLength)
	}

	program, err := c.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}

	return func(e core.Expense) bool {
		out, err := expr.Run(program, env(e, now))
		if err != nil {
			c.logger.Debug("Filter expression failed", applog.FieldExpression, expression, applog.FieldError, err.Error())
			return false
		}
		ok, _ := out.(bool)
		return ok
	}, nil
}

func (c *Compiler) loadOrCompile(expression string) (*vm.Program, error) {
	if program, ok := c.programs.Get(expression); ok {
		return program, nil
	}
	program, err := expr.Compile(expression, expr.Env(sampleEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	c.programs.Set(expression, program)
	return program, nil
}
