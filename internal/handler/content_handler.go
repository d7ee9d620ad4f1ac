package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/service"
	"go.uber.org/zap"
)

// ContentHandler serves the editable parts of the public site:
// announcements, the gallery with its links, and the single-document
// sections.
type ContentHandler struct {
	announcements *service.AnnouncementService
	gallery       *service.GalleryService
	sections      map[string]siteSection
	log           *zap.Logger
}

func NewContentHandler(announcements *service.AnnouncementService, gallery *service.GalleryService, site *service.SiteService, log *zap.Logger) *ContentHandler {
	return &ContentHandler{
		announcements: announcements,
		gallery:       gallery,
		sections: map[string]siteSection{
			models.SectionAbout:   typedSection[models.About]{site.About, site.SaveAbout},
			models.SectionHistory: typedSection[models.History]{site.History, site.SaveHistory},
			models.SectionHero:    typedSection[models.Hero]{site.Hero, site.SaveHero},
			models.SectionFooter:  typedSection[models.Footer]{site.Footer, site.SaveFooter},
		},
		log: log,
	}
}

func (h *ContentHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.announcements.List(r.Context(), models.Priority(q.Get("priority")), q.Get("q"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ContentHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var a models.Announcement
	if err := readJSON(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.announcements.Create(r.Context(), &a)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ContentHandler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var a models.Announcement
	if err := readJSON(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.announcements.Update(r.Context(), chi.URLParam(r, "announcementId"), &a)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ContentHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "announcementId")
	if err := h.announcements.Delete(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *ContentHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.gallery.ListItems(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) AddGalleryItem(w http.ResponseWriter, r *http.Request) {
	var item models.GalleryItem
	if err := readJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.gallery.AddItem(r.Context(), &item)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ContentHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	item, err := h.gallery.ToggleFeatured(r.Context(), chi.URLParam(r, "itemId"))
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ContentHandler) DeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemId")
	if err := h.gallery.DeleteItem(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *ContentHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.gallery.ListLinks(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *ContentHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	var l models.RedirectLink
	if err := readJSON(r, &l); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.gallery.AddLink(r.Context(), &l)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ContentHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	var l models.RedirectLink
	if err := readJSON(r, &l); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.gallery.UpdateLink(r.Context(), chi.URLParam(r, "linkId"), &l)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ContentHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "linkId")
	if err := h.gallery.DeleteLink(r.Context(), id); err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// siteSection loads and saves one single-document section.
type siteSection interface {
	load(ctx context.Context) (any, error)
	save(r *http.Request) (any, error)
}

type typedSection[T any] struct {
	get func(context.Context) (*T, error)
	put func(context.Context, *T) (*T, error)
}

func (s typedSection[T]) load(ctx context.Context) (any, error) {
	return s.get(ctx)
}

func (s typedSection[T]) save(r *http.Request) (any, error) {
	var v T
	if err := readJSON(r, &v); err != nil {
		return nil, errBadBody
	}
	return s.put(r.Context(), &v)
}

func (h *ContentHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.sections[chi.URLParam(r, "section")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown section")
		return
	}
	v, err := sec.load(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// PutSection replaces a section as a whole.
func (h *ContentHandler) PutSection(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.sections[chi.URLParam(r, "section")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown section")
		return
	}
	v, err := sec.save(r)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
