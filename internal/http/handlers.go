package http

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/notify"
	"spendlog/internal/storage"
)

const readyTimeout = 2 * time.Second

const msgTooManyRequests = "Too many requests. Please slow down."

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// PingReady adapts a storage backend to Options.Ready. Backends that cannot
// ping are always ready.
func PingReady(kv storage.KeyValue) func(ctx context.Context) error {
	p, ok := kv.(storage.Pinger)
	if !ok {
		return nil
	}
	return p.Ping
}

func (s *Server) handleRateLimited(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, msgTooManyRequests).
		TriggerNotification(notify.Error, msgTooManyRequests, s.notifyTTL()).
		Write(w)
}

// render executes a template into a buffer first so a failing template
// never produces a half-written 200 response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, resp *HTMXResponseBuilder) {
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldOperation, applog.OpRender)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template render error",
			applog.FieldOperation, applog.OpRender, applog.FieldFile, name, applog.FieldError, err.Error())
		InternalServerError("failed to render page").Write(w)
		return
	}

	if resp == nil {
		resp = NewHTMXResponse()
	}
	resp.BodyHTML(buf.String()).Write(w)
}

func (s *Server) notifyTTL() time.Duration {
	if s.notifications != nil {
		return s.notifications.TTL()
	}
	return notify.DefaultTTL
}

// post forwards a notification to the banner center.
func (s *Server) post(kind notify.Kind, message string) {
	if s.notifications != nil {
		s.notifications.Notify(kind, message)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	all := s.store.Expenses()
	data := indexPage{
		Categories: core.Categories(),
		List:       listPartial{Expenses: core.FilteredView(all, core.Filter{}, s.store.Now())},
		Summary:    newSummary(all),
		NotifyTTL:  s.notifyTTL(),
	}
	if s.notifications != nil {
		if n, ok := s.notifications.Current(); ok {
			data.Notification = &n
		}
	}
	s.render(w, r, "index.html", data, nil)
}
