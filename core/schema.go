package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// Mode selects how unknown fields are treated while decoding.
// Both modes validate against the same struct tags.
type Mode int

const (
	// Closed rejects fields the schema does not declare. Used for requests.
	Closed Mode = iota
	// Open accepts undeclared fields. Used for responses, since the
	// server may add fields at any time.
	Open
)

// RequestKind identifies a request schema.
type RequestKind string

const (
	RequestGenerate  RequestKind = "generate"
	RequestVectorize RequestKind = "vectorize"
)

// Request is a request payload that can check itself against its schema.
type Request interface {
	Kind() RequestKind
	Validate() error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateImageReference, ImageReference{})
	return v
}

// validateImageReference requires exactly one image source. The builders
// check this first with a friendlier message; this catches decoded payloads.
func validateImageReference(sl validator.StructLevel) {
	ref := sl.Current().Interface().(ImageReference)
	switch {
	case ref.URL == "" && ref.Base64 == "":
		sl.ReportError(ref.URL, "url", "URL", "image_source", "")
	case ref.URL != "" && ref.Base64 != "":
		sl.ReportError(ref.Base64, "base64", "Base64", "image_source_exclusive", "")
	}
}

// Kind implements Request.
func (r *GenerateRequest) Kind() RequestKind { return RequestGenerate }

// Validate checks r against the generation request schema.
func (r *GenerateRequest) Validate() error {
	return validateStruct("generate request", r)
}

// Kind implements Request.
func (r *VectorizeRequest) Kind() RequestKind { return RequestVectorize }

// Validate checks r against the vectorization request schema.
func (r *VectorizeRequest) Validate() error {
	return validateStruct("vectorize request", r)
}

// Validate checks r against the SVG response schema.
func (r *SvgResponse) Validate() error {
	return validateStruct("svg response", r)
}

// ValidateRequest decodes data in Closed mode as the given request kind and
// validates it. Unknown fields at any level are rejected.
func ValidateRequest(kind RequestKind, data []byte) (Request, error) {
	var req Request
	switch kind {
	case RequestGenerate:
		req = &GenerateRequest{}
	case RequestVectorize:
		req = &VectorizeRequest{}
	default:
		return nil, fmt.Errorf("unknown request kind %q", kind)
	}

	if err := Decode(Closed, data, req); err != nil {
		return nil, decodeSchemaError(string(kind)+" request", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// ValidateResponse decodes data in Open mode as an SvgResponse and
// validates it. Unknown fields are preserved in Extra.
func ValidateResponse(data []byte) (*SvgResponse, error) {
	var resp SvgResponse
	if err := Decode(Open, data, &resp); err != nil {
		return nil, decodeSchemaError("svg response", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ParseErrorEnvelope reports whether data is a valid error envelope.
func ParseErrorEnvelope(data []byte) (*ErrorEnvelope, bool) {
	var env ErrorEnvelope
	if err := Decode(Open, data, &env); err != nil {
		return nil, false
	}
	if err := validate.Struct(&env); err != nil {
		return nil, false
	}
	return &env, true
}

// errNotObject is returned by Decode for a top-level value that is not an
// object, including null.
var errNotObject = errors.New("expected a JSON object")

// Decode decodes a single JSON object from data into dst.
func Decode(mode Mode, data []byte, dst any) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] != '{' && json.Valid(trimmed) {
		return errNotObject
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if mode == Closed {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func decodeSchemaError(target string, err error) error {
	msg := strings.TrimPrefix(err.Error(), "json: ")
	return &SchemaError{Target: target, Message: msg, Issues: []string{msg}, Err: err}
}

func validateStruct(target string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &SchemaError{Target: target, Message: err.Error(), Issues: []string{err.Error()}, Err: err}
	}

	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, fieldPath(fe)+": "+describeRule(fe))
	}
	first := verrs[0]
	return &SchemaError{
		Target:  target,
		Field:   fieldPath(first),
		Message: describeRule(first),
		Issues:  issues,
	}
}

// fieldPath returns the JSON path of a failed field without the root type name.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeRule(fe validator.FieldError) string {
	sized := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if sized {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if sized {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "eq":
		return fmt.Sprintf("must equal %q", fe.Param())
	case "url":
		return "must be a valid URL"
	case "image_source":
		return "requires a url or base64 value"
	case "image_source_exclusive":
		return "accepts either url or base64, not both"
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
