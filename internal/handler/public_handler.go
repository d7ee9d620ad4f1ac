package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ontohin26/ontohin/internal/export"
	"github.com/ontohin26/ontohin/internal/middleware"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/publicform"
	"github.com/ontohin26/ontohin/internal/render"
	"go.uber.org/zap"
)

// maxUploadBody caps a public submission, files included.
const maxUploadBody = 12 << 20

const msgFormNotFound = "ফর্মটি পাওয়া যায়নি"

// PublicHandler serves shared forms to anyone holding the link, both as
// JSON and as a server-rendered page.
type PublicHandler struct {
	rt  *publicform.Runtime
	log *zap.Logger
}

func NewPublicHandler(rt *publicform.Runtime, log *zap.Logger) *PublicHandler {
	return &PublicHandler{rt: rt, log: log}
}

// publicForm leaves out the export settings, which are admin-only.
type publicForm struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []models.Field `json:"fields"`
}

type visitResponse struct {
	State   publicform.State  `json:"state"`
	Form    *publicForm       `json:"form,omitempty"`
	Answers map[string]string `json:"answers,omitempty"`
}

// open resolves the token in the URL. It writes the response itself and
// returns nil when the visit cannot go on.
func (h *PublicHandler) open(w http.ResponseWriter, r *http.Request, html bool) *publicform.Visit {
	v, err := h.rt.Open(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if html {
			h.log.Error("resolve form failed", zap.String("request_id", middleware.RequestID(r.Context())), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return nil
		}
		fail(w, r, h.log, err)
		return nil
	}
	if v.State() == publicform.StateNotFound {
		if html {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			render.WriteNotFound(w)
			return nil
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": msgFormNotFound, "state": string(publicform.StateNotFound)})
		return nil
	}
	return v
}

func (h *PublicHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	v := h.open(w, r, false)
	if v == nil {
		return
	}
	f := v.Form()
	writeJSON(w, http.StatusOK, visitResponse{
		State:   v.State(),
		Form:    &publicForm{ID: f.ID, Title: f.Title, Description: f.Description, Fields: f.Fields},
		Answers: v.Answers(),
	})
}

type submitRequest struct {
	Data  map[string]string      `json:"data"`
	Files map[string]export.File `json:"files"`
}

// Submit accepts answers as JSON (files base64-encoded) or as a multipart
// form keyed by field id.
func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	v := h.open(w, r, false)
	if v == nil {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	if isMultipart(r) {
		if err := parseForm(r); err != nil {
			writeError(w, formStatus(err), "invalid form body")
			return
		}
		defer r.MultipartForm.RemoveAll()
		capture(v, r)
	} else {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, formStatus(err), "invalid request body")
			return
		}
		if err := apply(v, req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	id, err := v.Submit(r.Context())
	var verr *publicform.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   verr.Error(),
			"missing": verr.Missing,
			"state":   publicform.StateError,
		})
	case errors.Is(err, publicform.ErrPersistFailed):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": publicform.MsgPersistFailed,
			"state": publicform.StateError,
		})
	case err != nil:
		fail(w, r, h.log, err)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": publicform.StateSubmitted})
	}
}

// ShowForm draws the fillable page for a share link.
func (h *PublicHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	v := h.open(w, r, true)
	if v == nil {
		return
	}
	h.page(w, r, http.StatusOK, v, "")
}

// SubmitForm handles the page's own post. Any failure redraws the page
// with the visitor's answers and an error banner.
func (h *PublicHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	v := h.open(w, r, true)
	if v == nil {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := parseForm(r); err != nil {
		status := formStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	capture(v, r)

	if _, err := v.Submit(r.Context()); err != nil {
		status := http.StatusInternalServerError
		var verr *publicform.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusBadRequest
		}
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = publicform.MsgPersistFailed
		}
		h.page(w, r, status, v, msg)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	render.WriteThanks(w)
}

// Index forwards hash-style share links to the rendered form.
func (h *PublicHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	render.WriteIndex(w)
}

func (h *PublicHandler) page(w http.ResponseWriter, r *http.Request, status int, v *publicform.Visit, msg string) {
	var buf bytes.Buffer
	err := render.WriteForm(r.Context(), &buf, render.FormPage{
		Form:   v.Form(),
		Values: v.Answers(),
		Error:  msg,
		Action: "/form/" + v.Form().ShareToken,
	})
	if err != nil {
		h.log.Error("render form page", zap.String("token", v.Form().ShareToken), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadBody)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func formStatus(err error) int {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// capture copies every field's answer out of a parsed form into v.
func capture(v *publicform.Visit, r *http.Request) {
	for _, f := range v.Form().InputFields() {
		value, file, ok := render.For(f.Type).Capture(f, r)
		switch {
		case file != nil:
			v.Attach(f.ID, *file)
		case ok:
			v.Set(f.ID, value)
		}
	}
}

func apply(v *publicform.Visit, req submitRequest) error {
	for id, value := range req.Data {
		v.Set(id, value)
	}
	for id, f := range req.Files {
		data, err := base64.StdEncoding.DecodeString(f.Base64)
		if err != nil {
			return errors.New("file " + id + " is not valid base64")
		}
		v.Attach(id, models.Attachment{Name: f.Name, ContentType: f.Type, Data: data})
	}
	return nil
}
