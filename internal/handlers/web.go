package handlers

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"

	"github.com/petermazzocco/thumbnail-mixer/internal/auth"
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
)

const appTitle = "Thumbnail Mixer"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formatSize": formatSize,
	"derefString": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
	"derefInt": func(p *int) string {
		if p == nil {
			return "-"
		}
		return strconv.Itoa(*p)
	},
}).ParseFS(templateFS, "templates/*.html"))

func (h *Handler) render(w http.ResponseWriter, status int, name string, data map[string]any) {
	data["Title"] = appTitle
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("failed to render template", "template", name, "error", err)
	}
}

// Index serves the landing page, or the app for signed-in users.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", map[string]any{
		"User": auth.CurrentUser(r.Context()),
	})
}

func (h *Handler) ThumbnailPage(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.notFound(w)
		return
	}

	thumbnail, err := h.thumbnails.Get(r.Context(), user.ID, uint(id))
	if err != nil {
		h.pageError(w, err)
		return
	}
	data := map[string]any{"User": user, "Thumbnail": thumbnail}
	if n := len(thumbnail.Analyses); n > 0 {
		data["Latest"] = thumbnail.Analyses[n-1]
	}
	h.render(w, http.StatusOK, "thumbnail.html", data)
}

func (h *Handler) MixPage(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.notFound(w)
		return
	}

	mix, err := h.mixes.Get(r.Context(), user.ID, uint(id))
	if err != nil {
		h.pageError(w, err)
		return
	}
	h.render(w, http.StatusOK, "mix.html", map[string]any{
		"User":        user,
		"Mix":         mix,
		"Suggestions": suggestionsText(mix.RAGSuggestions),
	})
}

// suggestionsText unwraps a stored suggestions blob for display.
func suggestionsText(blob *datatypes.JSON) string {
	if blob == nil || len(*blob) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(*blob, &text); err == nil {
		return text
	}
	return string(*blob)
}

func (h *Handler) notFound(w http.ResponseWriter) {
	h.render(w, http.StatusNotFound, "error.html", map[string]any{
		"Message": "We could not find that page.",
	})
}

func (h *Handler) pageError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNotFound) {
		h.notFound(w)
		return
	}
	h.log.Error("failed to load page", "error", err)
	h.render(w, http.StatusInternalServerError, "error.html", map[string]any{
		"Message": "Something went wrong. Please try again.",
	})
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
