package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ontohin26/ontohin/internal/service"
	"go.uber.org/zap"
)

type InboxHandler struct {
	svc *service.InboxService
	log *zap.Logger
}

func NewInboxHandler(svc *service.InboxService, log *zap.Logger) *InboxHandler {
	return &InboxHandler{svc: svc, log: log}
}

func inboxQuery(r *http.Request) service.InboxQuery {
	q := r.URL.Query()
	return service.InboxQuery{FormID: q.Get("formId"), Term: q.Get("q")}
}

func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.List(r.Context(), inboxQuery(r))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       len(subs),
	})
}

func (h *InboxHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Detail(r.Context(), chi.URLParam(r, "subId"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *InboxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "subId")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Stream pushes the filtered inbox as server-sent events whenever a
// submission arrives or is deleted.
func (h *InboxHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ch, err := h.svc.Watch(r.Context(), inboxQuery(r))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	stream(w, r, h.log, ch)
}
