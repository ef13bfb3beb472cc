package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"spendlog/internal/core"
	"spendlog/internal/export"
	applog "spendlog/internal/log"
	"spendlog/internal/notify"
	"spendlog/internal/query"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	in, err := ParseExpenseInput(r)
	if err != nil {
		logger.WarnContext(ctx, "Invalid request body", applog.FieldOperation, applog.OpParse, applog.FieldError, err.Error())
		BadRequestError("Invalid request format").Write(w)
		return
	}

	e, err := s.store.Create(ctx, in.Name, in.Amount, in.Category)
	switch {
	case isValidationError(err):
		logger.InfoContext(ctx, "Expense validation failed", applog.FieldOperation, applog.OpValidate, applog.FieldError, err.Error())
		UnprocessableEntityError(err.Error()).
			TriggerNotification(notify.Error, err.Error(), s.notifyTTL()).
			Write(w)
		return
	case err != nil:
		// The store already posted the failure. The expense is kept in
		// memory, so the list still refreshes.
		InternalServerError(notify.MsgSaveFailed).
			TriggerNotification(notify.Error, notify.MsgSaveFailed, s.notifyTTL()).
			TriggerExpensesChanged().
			Write(w)
		return
	}

	s.post(notify.Success, notify.MsgExpenseAdded)
	NewHTMXResponse().
		TriggerNotification(notify.Success, notify.MsgExpenseAdded, s.notifyTTL()).
		TriggerExpensesChanged().
		TriggerFormReset().
		Header("Location", "/expenses/"+e.ID).
		Write(w)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrMissingCategory) ||
		errors.Is(err, core.ErrUnknownCategory)
}

// handleDeleteExpense always answers 200 with an empty body so HTMX drops
// the row, even when the id was already gone.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		InternalServerError(notify.MsgSaveFailed).
			TriggerNotification(notify.Error, notify.MsgSaveFailed, s.notifyTTL()).
			TriggerExpensesChanged().
			Write(w)
		return
	}

	NewHTMXResponse().
		TriggerNotification(notify.Success, notify.MsgExpenseDeleted, s.notifyTTL()).
		TriggerExpensesChanged().
		Write(w)
}

func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := ParseFilterParams(r.URL.Query())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	now := s.store.Now()
	match, err := s.queries.Compile(params.Query, now)
	if err != nil {
		applog.FromContext(ctx).InfoContext(ctx, "Rejected filter expression",
			applog.FieldExpression, params.Query, applog.FieldError, err.Error())
		msg := "Invalid filter expression"
		if errors.Is(err, query.ErrInvalidQuery) {
			msg = err.Error()
		}
		UnprocessableEntityError(msg).
			TriggerNotification(notify.Error, msg, s.notifyTTL()).
			Write(w)
		return
	}

	all := s.store.Expenses()
	filtered := core.FilteredView(all, core.Filter{
		Category: params.Category,
		Range:    params.Range,
		Match:    match,
	}, now)

	applog.FromContext(ctx).DebugContext(ctx, "Expense list rendered",
		applog.FieldOperation, applog.OpList, applog.FieldCount, len(filtered))
	s.render(w, r, "expense_list.html", listPartial{Expenses: filtered}, nil)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "summary.html", newSummary(s.store.Expenses()), nil)
}

// handleExport streams the whole list as a CSV attachment. An empty list
// answers 204 with an info notification.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	list := s.store.Expenses()
	now := s.store.Now()

	var buf bytes.Buffer
	err := export.Write(&buf, list, now.Location())
	if errors.Is(err, export.ErrNothingToExport) {
		s.post(notify.Info, notify.MsgNothingToExport)
		NewHTMXResponse().
			Status(http.StatusNoContent).
			TriggerNotification(notify.Info, notify.MsgNothingToExport, s.notifyTTL()).
			Write(w)
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "CSV export failed", applog.FieldOperation, applog.OpExport, applog.FieldError, err.Error())
		InternalServerError("Export failed").Write(w)
		return
	}

	logger.InfoContext(ctx, "Expenses exported", applog.FieldOperation, applog.OpExport, applog.FieldCount, len(list))
	s.post(notify.Success, notify.MsgExported)
	NewHTMXResponse().
		Header("Content-Type", "text/csv; charset=utf-8").
		Header("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`).
		Header("Content-Length", strconv.Itoa(buf.Len())).
		TriggerNotification(notify.Success, notify.MsgExported, s.notifyTTL()).
		Body(buf.Bytes()).
		Write(w)
}
