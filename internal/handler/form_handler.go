package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/service"
	"go.uber.org/zap"
)

type FormHandler struct {
	svc *service.FormService
	log *zap.Logger
}

func NewFormHandler(svc *service.FormService, log *zap.Logger) *FormHandler {
	return &FormHandler{svc: svc, log: log}
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	// An empty body creates an untitled form.
	if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.Create(r.Context(), req.Title, req.Description)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Get(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// Update saves the whole form document sent by the builder.
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var form models.Form
	if err := readJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form.ID = chi.URLParam(r, "formId")
	saved, err := h.svc.Save(r.Context(), &form)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "formId")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *FormHandler) Share(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Share(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *FormHandler) AddField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type models.FieldType `json:"type"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, field, err := h.svc.AddField(r.Context(), chi.URLParam(r, "formId"), req.Type)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"form": form, "field": field})
}

func (h *FormHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var patch models.FieldPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.UpdateField(r.Context(), chi.URLParam(r, "formId"), chi.URLParam(r, "fieldId"), patch)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *FormHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.RemoveField(r.Context(), chi.URLParam(r, "formId"), chi.URLParam(r, "fieldId"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *FormHandler) MoveField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To *int `json:"to"`
	}
	if err := readJSON(r, &req); err != nil || req.To == nil {
		writeError(w, http.StatusBadRequest, "target position is required")
		return
	}
	form, err := h.svc.MoveField(r.Context(), chi.URLParam(r, "formId"), chi.URLParam(r, "fieldId"), *req.To)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}
