package http

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/notify"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateExpenseValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{"zero amount", url.Values{"name": {"x"}, "amount": {"0"}, "category": {"Food"}}, core.ErrInvalidAmount.Error()},
		{"negative amount", url.Values{"name": {"x"}, "amount": {"-5"}, "category": {"Food"}}, core.ErrInvalidAmount.Error()},
		{"not a number", url.Values{"name": {"x"}, "amount": {"abc"}, "category": {"Food"}}, core.ErrInvalidAmount.Error()},
		{"thousands separator", url.Values{"name": {"Rent"}, "amount": {"1,000"}, "category": {"Bills"}}, core.ErrInvalidAmount.Error()},
		{"empty name", url.Values{"name": {"   "}, "amount": {"1"}, "category": {"Food"}}, core.ErrEmptyName.Error()},
		{"missing category", url.Values{"name": {"x"}, "amount": {"1"}}, core.ErrMissingCategory.Error()},
		{"unknown category", url.Values{"name": {"x"}, "amount": {"1"}, "category": {"Pets"}}, core.ErrUnknownCategory.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})
			rr := env.do(postForm("/expenses", tt.form))
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rr.Code)
			}
			if !strings.Contains(rr.Header().Get("HX-Trigger"), tt.wantMsg) {
				t.Fatalf("HX-Trigger = %s, want message %q", rr.Header().Get("HX-Trigger"), tt.wantMsg)
			}
			if env.store.Len() != 0 {
				t.Fatal("invalid input must not change state")
			}
		})
	}
}

func TestCreateExpenseSuccess(t *testing.T) {
	env := newTestEnv(t, Options{})

	rr := env.do(postForm("/expenses", url.Values{"name": {"Coffee"}, "amount": {"3.50"}, "category": {"Food"}}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{EventExpensesChanged, EventFormReset, notify.MsgExpenseAdded} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %q: %s", want, trigger)
		}
	}

	list := env.store.Expenses()
	if len(list) != 1 || list[0].Name != "Coffee" || list[0].Amount.Cents != 350 {
		t.Fatalf("stored = %+v", list)
	}
	if !list[0].Date.Equal(testNow) {
		t.Fatalf("date = %v, want %v", list[0].Date, testNow)
	}
	if loc := rr.Header().Get("Location"); loc != "/expenses/"+list[0].ID {
		t.Fatalf("Location = %q", loc)
	}
	if n, ok := env.center.Current(); !ok || n.Message != notify.MsgExpenseAdded {
		t.Fatalf("center notification = %+v, %v", n, ok)
	}
}

func TestCreateExpenseJSON(t *testing.T) {
	env := newTestEnv(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"name":"Bus","amount":2,"category":"Transport"}`))
	req.Header.Set("Content-Type", "application/json")

	if rr := env.do(req); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := env.store.GrandTotal().Cents; got != 200 {
		t.Fatalf("total = %d", got)
	}
}

func TestCreateExpenseSaveFailure(t *testing.T) {
	env := newTestEnvWith(t, failingKV{setErr: errors.New("disk full")}, Options{})

	rr := env.do(postForm("/expenses", url.Values{"name": {"Tea"}, "amount": {"1"}, "category": {"Food"}}))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, notify.MsgSaveFailed) || !strings.Contains(trigger, EventExpensesChanged) {
		t.Fatalf("HX-Trigger = %s", trigger)
	}
	if env.store.Len() != 1 {
		t.Fatal("in-memory state should keep the expense")
	}
	if n, _ := env.center.Current(); n.Kind != notify.Error {
		t.Fatalf("center notification kind = %q", n.Kind)
	}
}

func TestDeleteExpense(t *testing.T) {
	env := newTestEnv(t, Options{})
	e := core.NewExpense("Coffee", core.Money{Cents: 350}, core.Food, testNow)
	seed(t, env, e)

	for i := 0; i < 2; i++ {
		rr := env.do(httptest.NewRequest(http.MethodDelete, "/expenses/"+e.ID, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("delete #%d status=%d", i+1, rr.Code)
		}
		if rr.Body.Len() != 0 {
			t.Fatalf("delete body should be empty, got %q", rr.Body.String())
		}
		if !strings.Contains(rr.Header().Get("HX-Trigger"), notify.MsgExpenseDeleted) {
			t.Fatalf("delete #%d missing notification", i+1)
		}
	}
	if env.store.Len() != 0 {
		t.Fatalf("store has %d expenses", env.store.Len())
	}
}

func TestDeleteExpenseSaveFailure(t *testing.T) {
	env := newTestEnvWith(t, failingKV{setErr: errors.New("disk full")}, Options{})

	rr := env.do(httptest.NewRequest(http.MethodDelete, "/expenses/abc", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), notify.MsgSaveFailed) {
		t.Fatalf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}
}

func TestExpenseListPartial(t *testing.T) {
	env := newTestEnv(t, Options{})
	older := core.NewExpense("Bus", core.Money{Cents: 200}, core.Transport, testNow.Add(-10*24*time.Hour))
	coffee := core.NewExpense("Coffee", core.Money{Cents: 350}, core.Food, testNow.Add(-time.Hour))
	cinema := core.NewExpense("Cinema <3", core.Money{Cents: 1200}, core.Entertainment, testNow.Add(-2*time.Hour))
	seed(t, env, older, coffee, cinema)

	tests := []struct {
		name    string
		query   url.Values
		want    []string
		notWant []string
	}{
		{
			name:  "all, newest first",
			query: url.Values{},
			want:  []string{"Coffee", "Cinema &lt;3", "Bus"},
		},
		{
			name:    "category",
			query:   url.Values{"category": {"Food"}},
			want:    []string{"Coffee"},
			notWant: []string{"Bus", "Cinema"},
		},
		{
			name:    "week range",
			query:   url.Values{"range": {"week"}},
			want:    []string{"Coffee", "Cinema"},
			notWant: []string{"Bus"},
		},
		{
			name:    "expression",
			query:   url.Values{"q": {`amount > 10`}},
			want:    []string{"Cinema"},
			notWant: []string{"Coffee", "Bus"},
		},
		{
			name:  "no matches",
			query: url.Values{"category": {"Health"}},
			want:  []string{notify.MsgNoMatches},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, "/ui/expenses?"+tt.query.Encode(), nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			body := rr.Body.String()
			last := -1
			for _, w := range tt.want {
				idx := strings.Index(body, w)
				if idx < 0 {
					t.Fatalf("body missing %q", w)
				}
				if idx < last {
					t.Fatalf("%q rendered out of order", w)
				}
				last = idx
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Fatalf("body should not contain %q", w)
				}
			}
		})
	}
}

func TestExpenseListRendering(t *testing.T) {
	env := newTestEnv(t, Options{})
	e := core.NewExpense("Coffee", core.Money{Cents: 350}, core.Food, testNow)
	seed(t, env, e)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/ui/expenses", nil))
	body := rr.Body.String()
	for _, want := range []string{
		`class="expense-item"`,
		"$3.50",
		"category-food",
		"Mar 31, 2025",
		`hx-delete="/expenses/` + e.ID + `"`,
		"Are you sure you want to delete this expense?",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("list missing %q", want)
		}
	}
}

func TestExpenseListRejectsBadFilters(t *testing.T) {
	env := newTestEnv(t, Options{})

	rr := env.do(httptest.NewRequest(http.MethodGet, "/ui/expenses?category=Pets", nil))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown category status=%d", rr.Code)
	}

	q := url.Values{"q": {"amount >"}}.Encode()
	rr = env.do(httptest.NewRequest(http.MethodGet, "/ui/expenses?"+q, nil))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad expression status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Fatalf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}
}

func TestSummaryPartial(t *testing.T) {
	env := newTestEnv(t, Options{})
	seed(t, env,
		core.NewExpense("Coffee", core.Money{Cents: 350}, core.Food, testNow),
		core.NewExpense("Bus", core.Money{Cents: 200}, core.Transport, testNow),
	)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/ui/summary?category=Transport", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="total-amount" class="total-amount">$5.50<`) {
		t.Fatalf("grand total must ignore filters: %s", body)
	}
	food := strings.Index(body, "$3.50")
	bus := strings.Index(body, "$2.00")
	if food < 0 || bus < 0 || food > bus {
		t.Fatalf("breakdown not sorted by amount: %s", body)
	}
	if !strings.Contains(body, `category-item food`) {
		t.Fatal("breakdown item missing category class")
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, Options{})

	rr := env.do(httptest.NewRequest(http.MethodGet, "/export", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("empty export status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), notify.MsgNothingToExport) {
		t.Fatalf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}

	seed(t, env,
		core.NewExpense(`Dinner, "fancy"`, core.Money{Cents: 4210}, core.Food, testNow),
		core.NewExpense("Bus", core.Money{Cents: 200}, core.Transport, testNow),
	)
	rr = env.do(httptest.NewRequest(http.MethodGet, "/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "expenses_2025-03-31.csv") {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	want := [][]string{
		{"Name", "Amount", "Category", "Date"},
		{`Dinner, "fancy"`, "42.10", "Food", "3/31/2025"},
		{"Bus", "2.00", "Transport", "3/31/2025"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{350, "$3.50"},
		{200, "$2.00"},
		{123456, "$1,234.56"},
		{-99, "-$0.99"},
	}
	for _, tt := range tests {
		if got := formatMoney(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("formatMoney(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
