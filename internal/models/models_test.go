package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedForm_Int(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int
		wantOK bool
	}{
		{"plain string", "50", 50, true},
		{"leading integer", "50 trees", 50, true},
		{"leading whitespace", "  12", 12, true},
		{"decimal string", "12.7", 12, true},
		{"negative", "-3", -3, true},
		{"float", 42.9, 42, true},
		{"json number", json.Number("75"), 75, true},
		{"json decimal", json.Number("7.5"), 7, true},
		{"json exponent", json.Number("1.5e3"), 1500, true},
		{"json negative decimal", json.Number("-2.9"), -2, true},
		{"words", "about fifty", 0, false},
		{"empty", "", 0, false},
		{"sign only", "-", 0, false},
		{"bool", true, 0, false},
		{"null", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := NormalizedForm{"n": tt.value}
			got, ok := form.Int("n")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := NormalizedForm{}.Int("missing")
	assert.False(t, ok)
}

func TestNormalizedForm_Text(t *testing.T) {
	form := NormalizedForm{
		"s":    "Austin",
		"n":    json.Number("12"),
		"f":    3.5,
		"b":    false,
		"nil":  nil,
		"list": []any{"a", "b"},
	}

	assert.Equal(t, "Austin", *form.Text("s"))
	assert.Equal(t, "12", *form.Text("n"))
	assert.Equal(t, "3.5", *form.Text("f"))
	assert.Equal(t, "false", *form.Text("b"))
	assert.Equal(t, `["a","b"]`, *form.Text("list"))
	assert.Nil(t, form.Text("nil"))
	assert.Nil(t, form.Text("missing"))
}

func TestNormalizedForm_NonEmpty(t *testing.T) {
	form := NormalizedForm{"a": "x", "b": "", "c": nil}

	v, ok := form.NonEmpty("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = form.NonEmpty("b")
	assert.False(t, ok)
	_, ok = form.NonEmpty("c")
	assert.False(t, ok)
	_, ok = form.NonEmpty("d")
	assert.False(t, ok)
}

func TestSchoolInputFromForm(t *testing.T) {
	form := NormalizedForm{
		FieldSchoolName:         "Lincoln Elementary",
		FieldCity:               "Austin",
		FieldCountry:            "USA",
		FieldSchoolContactEmail: "office@lincoln.edu",
		FieldEventType:          "ignored",
	}

	in := SchoolInputFromForm(form)
	require.NotNil(t, in.Name)
	assert.Equal(t, "Lincoln Elementary", *in.Name)
	assert.Equal(t, "Austin", *in.City)
	assert.Nil(t, in.State)
	assert.Equal(t, "USA", *in.Country)
	assert.Equal(t, "office@lincoln.edu", *in.ContactEmail)
}

func TestSchoolInput_MarshalsAbsentFieldsAsNull(t *testing.T) {
	name := "Lincoln"
	b, err := json.Marshal(SchoolInput{Name: &name})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"Lincoln","city":null,"state":null,"country":null,"contact_email":null}`, string(b))
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  ID
	}{
		{`"6f1c3c7e-3c3b-4d7e-9a59-6d6a3f0b6a10"`, "6f1c3c7e-3c3b-4d7e-9a59-6d6a3f0b6a10"},
		{`42`, "42"},
		{`null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.input), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestEventInput_BasicVariantOmitsOptionalColumns(t *testing.T) {
	b, err := json.Marshal(EventInput{SchoolID: "1", Title: "T"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "trees_planted")
	assert.NotContains(t, fields, "pickup")
	assert.Contains(t, fields, "event_date")
}

func TestParseEventVariant(t *testing.T) {
	v, err := ParseEventVariant("Extended")
	require.NoError(t, err)
	assert.Equal(t, EventVariantExtended, v)

	_, err = ParseEventVariant("v2")
	assert.ErrorIs(t, err, ErrInvalidEventVariant)
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("pipeline: %w", &PersistenceError{Step: StepSchool, Err: cause})

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Failed to create school record", pe.Message())
	assert.Equal(t, "Failed to create event record", (&PersistenceError{Step: StepEvent}).Message())
}
