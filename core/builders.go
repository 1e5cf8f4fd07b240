package core

// SamplingOptions are the generation knobs shared by both request kinds.
// Nil pointers are left out of the payload.
type SamplingOptions struct {
	N               *int
	TopP            *float64
	MaxOutputTokens *int
	Temperature     *float64
	PresencePenalty *float64
	Stream          bool
}

// GenerateInput is the loosely-typed input to BuildGenerateRequest.
type GenerateInput struct {
	Model           string
	Prompt          string
	Instructions    string
	ReferenceURLs   []string
	ReferenceBase64 []string
	SamplingOptions
}

// VectorizeInput is the loosely-typed input to BuildVectorizeRequest.
type VectorizeInput struct {
	Model       string
	ImageURL    string
	ImageBase64 string
	AutoCrop    bool
	TargetSize  *int
	SamplingOptions
}

// BuildGenerateRequest assembles and validates a generation request.
// URL references come before base64 references.
func BuildGenerateRequest(in GenerateInput) (*GenerateRequest, error) {
	var refs []ImageReference
	for _, u := range in.ReferenceURLs {
		refs = append(refs, ImageReference{URL: u})
	}
	for _, b := range in.ReferenceBase64 {
		refs = append(refs, ImageReference{Base64: b})
	}

	req := &GenerateRequest{
		Model:           in.Model,
		Prompt:          in.Prompt,
		N:               in.N,
		TopP:            in.TopP,
		MaxOutputTokens: in.MaxOutputTokens,
		Stream:          in.Stream,
		Temperature:     in.Temperature,
		PresencePenalty: in.PresencePenalty,
		References:      refs,
	}
	if in.Instructions != "" {
		instructions := in.Instructions
		req.Instructions = &instructions
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// BuildVectorizeRequest assembles and validates a vectorization request.
//
// The image source is checked in two steps: first exactly one of ImageURL
// and ImageBase64 must be supplied, then the surviving value is shaped into
// an ImageReference and validated with the rest of the payload.
func BuildVectorizeRequest(in VectorizeInput) (*VectorizeRequest, error) {
	hasURL := in.ImageURL != ""
	hasBase64 := in.ImageBase64 != ""
	if hasURL == hasBase64 {
		return nil, &SchemaError{
			Target:  "vectorize request",
			Field:   "image",
			Message: ErrImageSource.Error(),
			Issues:  []string{"image: " + ErrImageSource.Error()},
			Err:     ErrImageSource,
		}
	}

	image := ImageReference{Base64: in.ImageBase64}
	if hasURL {
		image = ImageReference{URL: in.ImageURL}
	}

	req := &VectorizeRequest{
		Model:           in.Model,
		Image:           image,
		N:               in.N,
		TopP:            in.TopP,
		MaxOutputTokens: in.MaxOutputTokens,
		Stream:          in.Stream,
		Temperature:     in.Temperature,
		PresencePenalty: in.PresencePenalty,
		AutoCrop:        in.AutoCrop,
		TargetSize:      in.TargetSize,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
