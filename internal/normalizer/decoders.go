package normalizer

import (
	"encoding/json"
	"fmt"

	"fillout-webhook/internal/models"
)

// Shape names reported alongside a normalized form.
const (
	ShapeQuestionList     = "question_list"
	ShapeNestedSubmission = "nested_submission"
	ShapeFlatData         = "flat_data"
	ShapePassthrough      = "passthrough"
)

// Decoder extracts a normalized form from one known upstream payload shape.
// ok is false when the payload does not have that shape; err is set when it
// does but cannot be read.
type Decoder interface {
	Shape() string
	Decode(payload map[string]any) (form models.NormalizedForm, ok bool, err error)
}

// QuestionListDecoder reads `questions: [{name, value}]` payloads.
type QuestionListDecoder struct{}

// Shape implements Decoder.
func (QuestionListDecoder) Shape() string { return ShapeQuestionList }

// Decode implements Decoder. An empty result is not a match.
func (QuestionListDecoder) Decode(payload map[string]any) (models.NormalizedForm, bool, error) {
	raw, ok := payload["questions"]
	if !ok || isFalsy(raw) {
		return nil, false, nil
	}

	questions, ok := raw.([]any)
	if !ok {
		return nil, false, fmt.Errorf("questions: expected array, got %T", raw)
	}

	form := models.NormalizedForm{}
	for _, q := range questions {
		question, ok := q.(map[string]any)
		if !ok {
			continue
		}

		name, _ := question["name"].(string)
		value, hasValue := question["value"]
		if name == "" || !hasValue {
			continue
		}
		form[name] = value
	}

	if len(form) == 0 {
		return nil, false, nil
	}
	return form, true, nil
}

// submissionFields maps the nested submission field names to canonical names.
var submissionFields = map[string]string{
	"schoolName":                    models.FieldSchoolName,
	"city":                          models.FieldCity,
	"state":                         models.FieldState,
	"schoolContactEmail":            models.FieldSchoolContactEmail,
	"typeOfEvent":                   models.FieldEventType,
	"estimatedNumberOfTreesToPlant": models.FieldEstimatedTrees,
	"preferredEventDatesOrTimeline": models.FieldEventStartDate,
	"endDate":                       models.FieldEventEndDate,
}

// NestedSubmissionDecoder reads `submission.data` payloads. The upstream
// form has no country question, so Country is always filled in when set.
type NestedSubmissionDecoder struct {
	Country string
}

// Shape implements Decoder.
func (NestedSubmissionDecoder) Shape() string { return ShapeNestedSubmission }

// Decode implements Decoder.
func (d NestedSubmissionDecoder) Decode(payload map[string]any) (models.NormalizedForm, bool, error) {
	submission, ok := payload["submission"].(map[string]any)
	if !ok {
		return nil, false, nil
	}
	data, ok := submission["data"].(map[string]any)
	if !ok {
		return nil, false, nil
	}

	form := models.NormalizedForm{}
	for upstream, canonical := range submissionFields {
		if v, ok := data[upstream]; ok {
			form[canonical] = v
		}
	}
	if d.Country != "" {
		form[models.FieldCountry] = d.Country
	}

	return form, true, nil
}

// FlatDataDecoder reads `data` objects that already use canonical names.
type FlatDataDecoder struct{}

// Shape implements Decoder.
func (FlatDataDecoder) Shape() string { return ShapeFlatData }

// Decode implements Decoder.
func (FlatDataDecoder) Decode(payload map[string]any) (models.NormalizedForm, bool, error) {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return nil, false, nil
	}
	return models.NormalizedForm(data), true, nil
}

// PassthroughDecoder treats the payload itself as already normalized. It
// always matches and belongs last in the chain.
type PassthroughDecoder struct{}

// Shape implements Decoder.
func (PassthroughDecoder) Shape() string { return ShapePassthrough }

// Decode implements Decoder.
func (PassthroughDecoder) Decode(payload map[string]any) (models.NormalizedForm, bool, error) {
	return models.NormalizedForm(payload), true, nil
}

// isFalsy reports whether v is null, false, zero or an empty string. Such a
// questions value is treated as absent.
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case float64:
		return x == 0
	default:
		return false
	}
}
