// Package handlers exposes the procedures, the upload endpoint and the web
// pages over HTTP.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/petermazzocco/thumbnail-mixer/internal/auth"
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
)

type Handler struct {
	thumbnails    *services.ThumbnailService
	mixes         *services.MixService
	sessions      *auth.Sessions
	maxUploadSize int64
	log           *slog.Logger
}

func New(
	thumbnails *services.ThumbnailService,
	mixes *services.MixService,
	sessions *auth.Sessions,
	maxUploadSize int64,
	log *slog.Logger,
) *Handler {
	return &Handler{
		thumbnails:    thumbnails,
		mixes:         mixes,
		sessions:      sessions,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

// Routes mounts every application route. rateLimit caps requests per minute
// for each client address and endpoint on the API routes.
func (h *Handler) Routes(rateLimit int) chi.Router {
	r := chi.NewRouter()
	r.Use(h.sessions.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthStatus{Status: "ok"})
	})

	// User auth
	r.Get("/auth/{provider}", h.sessions.BeginAuth)
	r.Get("/auth/{provider}/callback", h.sessions.Callback)

	procedures := h.Procedures()
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			rateLimit,
			1*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))
		r.Handle("/trpc/{procedure}", procedures)
		r.With(auth.RequireUser).Post("/api/thumbnails/upload", h.UploadThumbnail)
	})

	// Web client
	r.Get("/", h.Index)
	r.Get("/thumbnails/{id}", h.ThumbnailPage)
	r.Get("/mixes/{id}", h.MixPage)

	return r
}

// Procedures registers every query and mutation.
func (h *Handler) Procedures() *Procedures {
	p := NewProcedures(h.log)
	v := p.validate

	p.Query("system.health", false, bind(v, h.health))

	p.Query("auth.me", false, bind(v, h.me))
	p.Mutation("auth.logout", false, bind(v, h.logout))

	p.Query("thumbnails.list", true, bind(v, h.listThumbnails))
	p.Query("thumbnails.getById", true, bind(v, h.getThumbnail))
	p.Mutation("thumbnails.analyze", true, bind(v, h.analyzeThumbnail))

	p.Query("mixes.list", true, bind(v, h.listMixes))
	p.Query("mixes.getById", true, bind(v, h.getMix))
	p.Mutation("mixes.getSuggestions", true, bind(v, h.mixSuggestions))
	p.Mutation("mixes.create", true, bind(v, h.createMix))

	return p
}

type noInput struct{}

type healthStatus struct {
	Status string `json:"status"`
}

func (h *Handler) health(c *Context, _ noInput) (healthStatus, error) {
	return healthStatus{Status: "ok"}, nil
}
