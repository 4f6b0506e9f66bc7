package handlers

import (
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

type idInput struct {
	ID uint `json:"id" validate:"required"`
}

type analyzeInput struct {
	ThumbnailID uint `json:"thumbnailId" validate:"required"`
}

func (h *Handler) listThumbnails(c *Context, _ noInput) ([]models.Thumbnail, error) {
	return h.thumbnails.List(c, c.User.ID)
}

func (h *Handler) getThumbnail(c *Context, in idInput) (*models.Thumbnail, error) {
	return h.thumbnails.Get(c, c.User.ID, in.ID)
}

func (h *Handler) analyzeThumbnail(c *Context, in analyzeInput) (*services.ThumbnailAnalysis, error) {
	return h.thumbnails.Analyze(c, c.User.ID, in.ThumbnailID)
}
