package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/service"
	"go.uber.org/zap"
)

type EventHandler struct {
	events *service.EventService
	regs   *service.RegistrationService
	log    *zap.Logger
}

func NewEventHandler(events *service.EventService, regs *service.RegistrationService, log *zap.Logger) *EventHandler {
	return &EventHandler{events: events, regs: regs, log: log}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListPublished(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ev models.Event
	if err := readJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.events.Create(r.Context(), &ev)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var ev models.Event
	if err := readJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.events.Update(r.Context(), chi.URLParam(r, "eventId"), &ev)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventId")
	if err := h.events.Delete(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Register signs a visitor up for a published event.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegistrationInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reg, err := h.regs.Register(r.Context(), chi.URLParam(r, "eventId"), in)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.regs.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"registrations": regs,
		"total":         len(regs),
	})
}

func (h *EventHandler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "regId")
	if err := h.regs.Delete(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *EventHandler) StreamRegistrations(w http.ResponseWriter, r *http.Request) {
	ch, err := h.regs.Watch(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	stream(w, r, h.log, ch)
}
