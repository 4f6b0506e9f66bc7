package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/petermazzocco/thumbnail-mixer/internal/auth"
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
)

// UploadThumbnail stores the multipart "file" field as a new thumbnail for
// the signed-in user and answers with the created row.
func (h *Handler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: newError(CodeUnauthorized, "please sign in")})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: newError(CodeBadRequest, "file exceeds %d bytes", h.maxUploadSize)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: newError(CodeBadRequest, "missing file: %v", err)})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: newError(CodeBadRequest, "failed to read file: %v", err)})
		return
	}

	// Sniff the content rather than trusting the part header.
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: newError(CodeBadRequest, "unsupported file type %s", contentType)})
		return
	}

	thumbnail, err := h.thumbnails.Upload(r.Context(), user.ID, services.UploadInput{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		e := toError(err)
		if e.Code == CodeInternal {
			h.log.Error("failed to upload thumbnail", "user_id", user.ID, "file", header.Filename, "error", err)
		}
		writeJSON(w, statusByCode[e.Code], errorEnvelope{Error: e})
		return
	}

	writeJSON(w, http.StatusCreated, thumbnail)
}
