package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/ontohin26/ontohin/internal/auth"
	"github.com/ontohin26/ontohin/internal/handler"
	mw "github.com/ontohin26/ontohin/internal/middleware"
	"github.com/ontohin26/ontohin/internal/models"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Forms     *handler.FormHandler
	Public    *handler.PublicHandler
	Inbox     *handler.InboxHandler
	Events    *handler.EventHandler
	Dashboard *handler.DashboardHandler
	Content   *handler.ContentHandler
}

// New builds the route table. Event streams are wrapped by drain so they
// close when the server shuts down.
func New(tokens *auth.Issuer, corsOrigin string, drain *mw.Drain, log *zap.Logger, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger(log))
	r.Use(mw.Recovery(log))
	r.Use(mw.CORS(corsOrigin))

	r.Get("/healthz", handler.Healthz)

	// Server-rendered public form
	r.Get("/", h.Public.Index)
	r.Get("/form/{token}", h.Public.ShowForm)
	r.Post("/form/{token}", h.Public.SubmitForm)

	throttle := mw.NewLoginThrottle(log)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.With(throttle.Handler).Post("/auth/login", h.Auth.Login)
		r.Get("/public/forms/{token}", h.Public.GetForm)
		r.Post("/public/forms/{token}/submissions", h.Public.Submit)
		r.Get("/public/events", h.Events.ListPublished)
		r.Post("/public/events/{eventId}/registrations", h.Events.Register)
		r.Get("/public/announcements", h.Content.ListAnnouncements)
		r.Get("/public/gallery", h.Content.ListGallery)
		r.Get("/public/links", h.Content.ListLinks)
		r.Get("/public/site/{section}", h.Content.GetSection)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens, models.RoleAdmin))

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/dashboard", h.Dashboard.Dashboard)

			// Form builder
			r.Get("/forms", h.Forms.List)
			r.Post("/forms", h.Forms.Create)
			r.Get("/forms/{formId}", h.Forms.Get)
			r.Put("/forms/{formId}", h.Forms.Update)
			r.Delete("/forms/{formId}", h.Forms.Delete)
			r.Post("/forms/{formId}/share", h.Forms.Share)
			r.Post("/forms/{formId}/fields", h.Forms.AddField)
			r.Patch("/forms/{formId}/fields/{fieldId}", h.Forms.UpdateField)
			r.Delete("/forms/{formId}/fields/{fieldId}", h.Forms.RemoveField)
			r.Post("/forms/{formId}/fields/{fieldId}/move", h.Forms.MoveField)

			// Inbox
			r.Get("/submissions", h.Inbox.List)
			r.With(drain.Handler).Get("/submissions/stream", h.Inbox.Stream)
			r.Get("/submissions/{subId}", h.Inbox.Get)
			r.Delete("/submissions/{subId}", h.Inbox.Delete)

			// Events and registrations
			r.Get("/events", h.Events.List)
			r.Post("/events", h.Events.Create)
			r.Put("/events/{eventId}", h.Events.Update)
			r.Delete("/events/{eventId}", h.Events.Delete)
			r.Get("/registrations", h.Events.ListRegistrations)
			r.With(drain.Handler).Get("/registrations/stream", h.Events.StreamRegistrations)
			r.Delete("/registrations/{regId}", h.Events.DeleteRegistration)

			// Site content
			r.Get("/announcements", h.Content.ListAnnouncements)
			r.Post("/announcements", h.Content.CreateAnnouncement)
			r.Put("/announcements/{announcementId}", h.Content.UpdateAnnouncement)
			r.Delete("/announcements/{announcementId}", h.Content.DeleteAnnouncement)
			r.Get("/gallery", h.Content.ListGallery)
			r.Post("/gallery", h.Content.AddGalleryItem)
			r.Post("/gallery/{itemId}/featured", h.Content.ToggleFeatured)
			r.Delete("/gallery/{itemId}", h.Content.DeleteGalleryItem)
			r.Get("/links", h.Content.ListLinks)
			r.Post("/links", h.Content.AddLink)
			r.Put("/links/{linkId}", h.Content.UpdateLink)
			r.Delete("/links/{linkId}", h.Content.DeleteLink)
			r.Put("/site/{section}", h.Content.PutSection)
		})
	})

	return r
}
