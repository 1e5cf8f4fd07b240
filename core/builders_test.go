package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestBuildGenerateRequestWireShape(t *testing.T) {
	req, err := BuildGenerateRequest(GenerateInput{
		Model:  "arrow-preview",
		Prompt: "A rocket icon",
		SamplingOptions: SamplingOptions{
			N: intPtr(1),
		},
	})
	if err != nil {
		t.Fatalf("BuildGenerateRequest() error = %v", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"model":"arrow-preview","prompt":"A rocket icon","n":1}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestBuildGenerateRequestReferenceOrder(t *testing.T) {
	req, err := BuildGenerateRequest(GenerateInput{
		Model:           "m",
		Prompt:          "p",
		ReferenceBase64: []string{"aGk="},
		ReferenceURLs:   []string{"https://example.com/a.png"},
	})
	if err != nil {
		t.Fatalf("BuildGenerateRequest() error = %v", err)
	}
	if len(req.References) != 2 {
		t.Fatalf("References = %v, want 2", req.References)
	}
	if req.References[0].URL == "" || req.References[1].Base64 == "" {
		t.Errorf("References = %+v, want URL first then base64", req.References)
	}
	if req.Instructions != nil {
		t.Errorf("Instructions = %v, want nil for empty input", *req.Instructions)
	}
}

func TestBuildGenerateRequestRejectsInvalid(t *testing.T) {
	_, err := BuildGenerateRequest(GenerateInput{Model: "m", Prompt: "p", SamplingOptions: SamplingOptions{N: intPtr(0)}})
	if !errors.Is(err, ErrSchema) {
		t.Errorf("BuildGenerateRequest(n=0) error = %v, want ErrSchema", err)
	}
}

func TestBuildVectorizeRequestImageSource(t *testing.T) {
	tests := []struct {
		name    string
		in      VectorizeInput
		wantErr bool
	}{
		{"url only", VectorizeInput{Model: "m", ImageURL: "https://example.com/a.png"}, false},
		{"base64 only", VectorizeInput{Model: "m", ImageBase64: "aGVsbG8="}, false},
		{"both", VectorizeInput{Model: "m", ImageURL: "https://example.com/a.png", ImageBase64: "aGVsbG8="}, true},
		{"neither", VectorizeInput{Model: "m"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildVectorizeRequest(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrImageSource) || !errors.Is(err, ErrSchema) {
					t.Errorf("BuildVectorizeRequest() error = %v, want ErrImageSource", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildVectorizeRequest() error = %v", err)
			}
			if (req.Image.URL == "") == (req.Image.Base64 == "") {
				t.Errorf("Image = %+v, want exactly one source", req.Image)
			}
		})
	}
}

func TestBuildVectorizeRequestWireShape(t *testing.T) {
	req, err := BuildVectorizeRequest(VectorizeInput{
		Model:      "m",
		ImageURL:   "https://example.com/a.png",
		AutoCrop:   true,
		TargetSize: intPtr(512),
	})
	if err != nil {
		t.Fatalf("BuildVectorizeRequest() error = %v", err)
	}
	data, _ := json.Marshal(req)
	want := `{"model":"m","image":{"url":"https://example.com/a.png"},"auto_crop":true,"target_size":512}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
