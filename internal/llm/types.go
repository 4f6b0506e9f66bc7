package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"

	DetailHigh = "high"
	DetailLow  = "low"
	DetailAuto = "auto"
)

// ErrMalformedResponse is returned when the completion cannot be read as
// the caller expects.
var ErrMalformedResponse = errors.New("malformed completion response")

// Message is a role-tagged chat message. Content is either a plain string
// (Text) or a list of parts.
type Message struct {
	Role  string
	Text  string
	Parts []ContentPart
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	}{Role: m.Role, Content: m.Text}
	if len(m.Parts) > 0 {
		out.Content = m.Parts
	}
	return json.Marshal(out)
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image reference content part.
func ImagePart(url, detail string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url, Detail: detail}}
}

// JSONSchema constrains the completion to a strict structured output.
type JSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// Request is a single chat completion call.
type Request struct {
	Messages []Message
	Schema   *JSONSchema
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Completion is the content of the first choice, either a JSON string or an
// already structured JSON value.
type Completion struct {
	Content json.RawMessage
}

// Text returns the content as plain text. Structured content is returned as
// its JSON encoding.
func (c *Completion) Text() string {
	var s string
	if err := json.Unmarshal(c.Content, &s); err == nil {
		return s
	}
	return string(c.Content)
}

// Decode unmarshals structured content into v, first unwrapping it when the
// provider returned the object as a JSON-encoded string.
func (c *Completion) Decode(v any) error {
	raw := bytes.TrimSpace(c.Content)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		raw = []byte(s)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
