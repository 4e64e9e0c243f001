// Package normalizer converts Fillout webhook bodies into a normalized form.
package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"fillout-webhook/internal/models"
)

// Options configures the decoder chain.
type Options struct {
	// DefaultCountry is written into forms from the nested submission shape.
	// Empty disables country defaulting.
	DefaultCountry string
}

// Normalizer tries each decoder in order and returns the first match.
type Normalizer struct {
	decoders []Decoder
}

// New creates a normalizer with the standard decoder chain:
// question list, nested submission, flat data, passthrough.
func New(opts Options) *Normalizer {
	return NewWithDecoders(
		QuestionListDecoder{},
		NestedSubmissionDecoder{Country: opts.DefaultCountry},
		FlatDataDecoder{},
		PassthroughDecoder{},
	)
}

// NewWithDecoders creates a normalizer with a custom decoder chain.
func NewWithDecoders(decoders ...Decoder) *Normalizer {
	return &Normalizer{decoders: decoders}
}

// Result is a normalized form and the shape it was read from.
type Result struct {
	Form  models.NormalizedForm
	Shape string
}

// Normalize parses a raw webhook body. Malformed JSON, a non-object body, or
// an unreadable shape all return models.ErrInvalidPayload.
func (n *Normalizer) Normalize(body []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON body", models.ErrInvalidPayload)
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected JSON object, got %T", models.ErrInvalidPayload, payload)
	}

	return n.NormalizePayload(obj)
}

// NormalizePayload runs the decoder chain over an already parsed payload.
func (n *Normalizer) NormalizePayload(payload map[string]any) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: empty payload", models.ErrInvalidPayload)
	}

	for _, d := range n.decoders {
		form, ok, err := d.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrInvalidPayload, d.Shape(), err)
		}
		if ok {
			return &Result{Form: form, Shape: d.Shape()}, nil
		}
	}

	return nil, fmt.Errorf("%w: no known payload shape", models.ErrInvalidPayload)
}
