// Package worker applies expense events to a spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/sheets"
)

// DefaultConcurrency bounds parallel mirror calls during reconciliation.
const DefaultConcurrency = 4

// Stats counts processed events.
type Stats struct {
	Added   int64
	Deleted int64
	Failed  int64
}

// MirrorWorker keeps an ExpenseMirror in line with expense events.
type MirrorWorker struct {
	mirror      sheets.ExpenseMirror
	logger      *applog.Logger
	timeout     time.Duration
	concurrency int

	added   atomic.Int64
	deleted atomic.Int64
	failed  atomic.Int64
}

// NewMirrorWorker creates a worker. timeout bounds each mirror call; zero
// means no extra deadline.
func NewMirrorWorker(mirror sheets.ExpenseMirror, logger *applog.Logger, timeout time.Duration) *MirrorWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &MirrorWorker{
		mirror:      mirror,
		logger:      logger.WithComponent(applog.ComponentWorker),
		timeout:     timeout,
		concurrency: DefaultConcurrency,
	}
}

func (w *MirrorWorker) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.timeout)
}

// HandleEvent applies one event. Invalid payloads are reported as permanent
// so the consumer drops them instead of requeueing.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	callCtx, cancel := w.callContext(ctx)
	defer cancel()

	switch ev.Type {
	case amqp.EventExpenseAdded:
		if ev.Expense == nil {
			w.failed.Add(1)
			return &amqp.PermanentError{Err: errors.New("added event without expense")}
		}
		if err := ev.Expense.Validate(); err != nil {
			w.failed.Add(1)
			return &amqp.PermanentError{Err: fmt.Errorf("invalid expense %s: %w", ev.ID, err)}
		}
		ref, err := w.mirror.Append(callCtx, *ev.Expense)
		if err != nil {
			w.failed.Add(1)
			return fmt.Errorf("mirror expense %s: %w", ev.ID, err)
		}
		w.added.Add(1)
		w.logger.InfoContext(ctx, "Expense mirrored",
			applog.FieldExpenseID, ev.ID, applog.FieldEventType, string(ev.Type), "row_ref", ref)
		return nil

	case amqp.EventExpenseDeleted:
		err := w.mirror.Delete(callCtx, ev.ID)
		if errors.Is(err, sheets.ErrRowNotFound) {
			w.logger.DebugContext(ctx, "Deleted expense was not mirrored", applog.FieldExpenseID, ev.ID)
			err = nil
		}
		if err != nil {
			w.failed.Add(1)
			return fmt.Errorf("remove mirrored expense %s: %w", ev.ID, err)
		}
		w.deleted.Add(1)
		w.logger.InfoContext(ctx, "Mirrored expense removed",
			applog.FieldExpenseID, ev.ID, applog.FieldEventType, string(ev.Type))
		return nil

	default:
		w.failed.Add(1)
		return &amqp.PermanentError{Err: fmt.Errorf("unknown event type %q", ev.Type)}
	}
}

// Reconcile appends every expense in list to the mirror. It recovers rows
// missed while the worker was down; the mirror skips IDs it already has.
func (w *MirrorWorker) Reconcile(ctx context.Context, list []core.Expense) error {
	if len(list) == 0 {
		w.logger.InfoContext(ctx, "Nothing to reconcile")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	var synced atomic.Int64
	for _, e := range list {
		g.Go(func() error {
			if err := w.HandleEvent(gctx, amqp.NewExpenseAddedEvent(e)); err != nil {
				var pe *amqp.PermanentError
				if errors.As(err, &pe) {
					w.logger.WarnContext(gctx, "Skipping invalid stored expense",
						applog.FieldExpenseID, e.ID, applog.FieldError, err.Error())
					return nil
				}
				return err
			}
			synced.Add(1)
			return nil
		})
	}
	err := g.Wait()
	w.logger.InfoContext(ctx, "Reconciliation finished",
		applog.FieldCount, synced.Load(), applog.FieldSuccess, err == nil)
	return err
}

// Stats returns event counters.
func (w *MirrorWorker) Stats() Stats {
	return Stats{
		Added:   w.added.Load(),
		Deleted: w.deleted.Load(),
		Failed:  w.failed.Load(),
	}
}
