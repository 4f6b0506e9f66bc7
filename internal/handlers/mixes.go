package handlers

import (
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

type suggestionsInput struct {
	ThumbnailIDs []uint `json:"thumbnailIds" validate:"required,min=1"`
}

type createMixInput struct {
	Name           string  `json:"name" validate:"required"`
	Description    *string `json:"description"`
	SourceThumbIDs []uint  `json:"sourceThumbIds" validate:"required"`
	BlendingMethod string  `json:"blendingMethod"`
	RAGSuggestions *string `json:"ragSuggestions"`
}

func (h *Handler) listMixes(c *Context, _ noInput) ([]models.Mix, error) {
	return h.mixes.List(c, c.User.ID)
}

func (h *Handler) getMix(c *Context, in idInput) (*models.Mix, error) {
	return h.mixes.Get(c, c.User.ID, in.ID)
}

func (h *Handler) mixSuggestions(c *Context, in suggestionsInput) (*services.MixSuggestions, error) {
	return h.mixes.Suggest(c, c.User.ID, in.ThumbnailIDs)
}

func (h *Handler) createMix(c *Context, in createMixInput) (*models.Mix, error) {
	return h.mixes.Create(c, c.User.ID, services.CreateMixInput{
		Name:           in.Name,
		Description:    in.Description,
		SourceThumbIDs: in.SourceThumbIDs,
		BlendingMethod: in.BlendingMethod,
		RAGSuggestions: in.RAGSuggestions,
	})
}
