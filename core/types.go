package core

import (
	"encoding/json"
	"time"
)

// MimeTypeSVG is the only document type the API returns.
const MimeTypeSVG = "image/svg+xml"

// MaxImageBase64Len bounds an inline base64 image reference (16 MiB).
const MaxImageBase64Len = 16 * 1024 * 1024

// MaxReferences bounds the reference images of a generation request.
const MaxReferences = 4

// ImageReference points at input image data.
// Exactly one of URL and Base64 is set.
type ImageReference struct {
	URL    string `json:"url,omitempty" validate:"omitempty,url"`
	Base64 string `json:"base64,omitempty" validate:"omitempty,max=16777216"`
}

// GenerateRequest is the body of POST /v1/svgs/generations.
type GenerateRequest struct {
	Model           string           `json:"model" validate:"required"`
	Prompt          string           `json:"prompt" validate:"required"`
	Instructions    *string          `json:"instructions,omitempty" validate:"omitempty,min=1"`
	N               *int             `json:"n,omitempty" validate:"omitempty,min=1,max=16"`
	TopP            *float64         `json:"top_p,omitempty" validate:"omitempty,min=0,max=1"`
	MaxOutputTokens *int             `json:"max_output_tokens,omitempty" validate:"omitempty,min=1,max=131072"`
	Stream          bool             `json:"stream,omitempty"`
	Temperature     *float64         `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	PresencePenalty *float64         `json:"presence_penalty,omitempty" validate:"omitempty,min=-2,max=2"`
	References      []ImageReference `json:"references,omitempty" validate:"omitempty,max=4,dive"`
}

// VectorizeRequest is the body of POST /v1/svgs/vectorizations.
type VectorizeRequest struct {
	Model           string         `json:"model" validate:"required"`
	Image           ImageReference `json:"image"`
	N               *int           `json:"n,omitempty" validate:"omitempty,min=1,max=16"`
	TopP            *float64       `json:"top_p,omitempty" validate:"omitempty,min=0,max=1"`
	MaxOutputTokens *int           `json:"max_output_tokens,omitempty" validate:"omitempty,min=1,max=131072"`
	Stream          bool           `json:"stream,omitempty"`
	Temperature     *float64       `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	PresencePenalty *float64       `json:"presence_penalty,omitempty" validate:"omitempty,min=-2,max=2"`
	AutoCrop        bool           `json:"auto_crop,omitempty"`
	TargetSize      *int           `json:"target_size,omitempty" validate:"omitempty,min=128,max=4096"`
}

// SvgDocument is one generated SVG.
type SvgDocument struct {
	SVG      string `json:"svg" validate:"required"`
	MimeType string `json:"mime_type" validate:"eq=image/svg+xml"`
}

type svgDocumentFields struct {
	SVG           string `json:"svg"`
	MimeType      string `json:"mime_type"`
	MimeTypeCamel string `json:"mimeType"`
}

// UnmarshalJSON accepts mimeType as an alias of mime_type.
func (d *SvgDocument) UnmarshalJSON(data []byte) error {
	var raw svgDocumentFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.SVG = raw.SVG
	d.MimeType = raw.MimeType
	if d.MimeType == "" {
		d.MimeType = raw.MimeTypeCamel
	}
	return nil
}

// Usage reports token consumption for a generation.
type Usage struct {
	TotalTokens  int64 `json:"total_tokens" validate:"min=0"`
	InputTokens  int64 `json:"input_tokens" validate:"min=0"`
	OutputTokens int64 `json:"output_tokens" validate:"min=0"`
}

// SvgResponse is returned by generation and vectorization endpoints.
// Fields the client does not know about are kept in Extra and written
// back out by MarshalJSON.
type SvgResponse struct {
	ID      string        `json:"id" validate:"required"`
	Created *int64        `json:"created" validate:"required,min=0"`
	Data    []SvgDocument `json:"data" validate:"required,min=1,dive"`
	Usage   *Usage        `json:"usage,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// CreatedAt returns the creation time, or the zero time when unset.
func (r *SvgResponse) CreatedAt() time.Time {
	if r.Created == nil {
		return time.Time{}
	}
	return time.Unix(*r.Created, 0)
}

type svgResponseFields SvgResponse

var svgResponseKeys = []string{"id", "created", "data", "usage"}

// UnmarshalJSON decodes the known fields and collects the rest into Extra.
func (r *SvgResponse) UnmarshalJSON(data []byte) error {
	var known svgResponseFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range svgResponseKeys {
		delete(all, key)
	}
	if len(all) > 0 {
		known.Extra = all
	}
	*r = SvgResponse(known)
	return nil
}

// MarshalJSON encodes the known fields merged with Extra.
func (r SvgResponse) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(svgResponseFields(r))
	if err != nil || len(r.Extra) == 0 {
		return base, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// ErrorEnvelope is the structured error body the API returns on failure.
type ErrorEnvelope struct {
	Status    *int    `json:"status" validate:"required"`
	Code      *string `json:"code" validate:"required"`
	Message   string  `json:"message" validate:"required"`
	RequestID *string `json:"request_id,omitempty" validate:"omitempty,min=1"`
}

// Model describes one model returned by the models endpoints.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelList is the body of GET /v1/models.
type ModelList struct {
	Object string  `json:"object,omitempty"`
	Data   []Model `json:"data"`
}

// IDs returns the model identifiers in server order.
func (l *ModelList) IDs() []string {
	ids := make([]string, 0, len(l.Data))
	for _, m := range l.Data {
		ids = append(ids, m.ID)
	}
	return ids
}
