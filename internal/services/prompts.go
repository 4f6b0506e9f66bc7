package services

import (
	"encoding/json"
	"fmt"

	"github.com/petermazzocco/thumbnail-mixer/internal/llm"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

const (
	analyzeSystemPrompt = "You are an expert YouTube thumbnail designer. Analyze the thumbnail image and provide insights about colors, text, composition, and engagement potential."
	analyzeUserPrompt   = "Analyze this YouTube thumbnail and provide: 1) Dominant colors (hex codes), 2) Text elements and their positions, 3) Overall composition, 4) Engagement score (1-10), 5) Improvement suggestions. Return as JSON."

	mixSystemPrompt = "You are an expert YouTube thumbnail designer specializing in combining elements from multiple thumbnails to create optimal designs."
)

var analysisSchema = &llm.JSONSchema{
	Name:   "thumbnail_analysis",
	Strict: true,
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"dominantColors": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Array of dominant hex colors",
			},
			"textElements": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":     map[string]any{"type": "string"},
						"position": map[string]any{"type": "string"},
					},
					"required":             []string{"text", "position"},
					"additionalProperties": false,
				},
			},
			"composition":     map[string]any{"type": "string"},
			"engagementScore": map[string]any{"type": "number"},
			"suggestions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"dominantColors", "textElements", "composition", "engagementScore", "suggestions"},
		"additionalProperties": false,
	},
}

func analyzeRequest(imageURL string) llm.Request {
	return llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Text: analyzeSystemPrompt},
			{Role: llm.RoleUser, Parts: []llm.ContentPart{
				llm.TextPart(analyzeUserPrompt),
				llm.ImagePart(imageURL, llm.DetailHigh),
			}},
		},
		Schema: analysisSchema,
	}
}

// analysisSummary is the per-thumbnail context handed to the mix prompt.
// Absent analyses become empty lists with no composition or score.
type analysisSummary struct {
	DominantColors  []string             `json:"dominantColors"`
	TextElements    []models.TextElement `json:"textElements"`
	Composition     *string              `json:"composition,omitempty"`
	EngagementScore *int                 `json:"engagementScore,omitempty"`
}

func summarize(analyses []*models.Analysis) []analysisSummary {
	out := make([]analysisSummary, len(analyses))
	for i, a := range analyses {
		s := analysisSummary{DominantColors: []string{}, TextElements: []models.TextElement{}}
		if a != nil {
			if a.DominantColors != nil {
				s.DominantColors = a.DominantColors
			}
			if a.TextElements != nil {
				s.TextElements = a.TextElements
			}
			s.Composition = a.Composition
			s.EngagementScore = a.EngagementScore
		}
		out[i] = s
	}
	return out
}

func mixRequest(analyses []*models.Analysis) (llm.Request, error) {
	data, err := json.Marshal(summarize(analyses))
	if err != nil {
		return llm.Request{}, fmt.Errorf("failed to encode analyses: %w", err)
	}

	prompt := fmt.Sprintf(`Based on these thumbnail analyses, suggest the best way to mix and combine them:
%s

Provide specific recommendations for:
1. Best color combinations
2. Text placement strategy
3. Overall composition approach
4. Expected engagement improvement`, data)

	return llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Text: mixSystemPrompt},
			{Role: llm.RoleUser, Text: prompt},
		},
	}, nil
}
