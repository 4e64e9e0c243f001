// Package models defines the data structures for the Fillout webhook service.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Canonical field names of a normalized form.
const (
	FieldSchoolName         = "school_name"
	FieldCity               = "city"
	FieldState              = "state"
	FieldCountry            = "country"
	FieldSchoolContactEmail = "school_contact_email"
	FieldEventType          = "event_type"
	FieldEstimatedTrees     = "estimated_trees"
	FieldEventStartDate     = "event_start_date"
	FieldEventEndDate       = "event_end_date"

	// Aliases produced by some Fillout question configurations.
	FieldEventEstimateTrees = "event_estimate_trees"
	FieldEventDateRange     = "event_date_range"
)

// NormalizedForm is the flat field set extracted from a webhook payload,
// independent of the upstream payload shape.
type NormalizedForm map[string]any

// Value returns the raw value stored under key.
func (f NormalizedForm) Value(key string) (any, bool) {
	v, ok := f[key]
	return v, ok
}

// Text renders the value under key as a string. Absent keys and JSON nulls
// return nil.
func (f NormalizedForm) Text(key string) *string {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	s := stringify(v)
	return &s
}

// NonEmpty returns the value under key only when it renders to a non-empty
// string.
func (f NormalizedForm) NonEmpty(key string) (string, bool) {
	s := f.Text(key)
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

// Int parses the value under key the way a lenient form field is read:
// numbers are truncated, strings contribute their leading integer.
func (f NormalizedForm) Int(key string) (int, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return 0, false
	}

	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
		return parseLeadingInt(n.String())
	case string:
		return parseLeadingInt(n)
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// parseLeadingInt reads an optional sign followed by digits, ignoring
// leading whitespace and anything after the digits ("50 trees" -> 50).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
