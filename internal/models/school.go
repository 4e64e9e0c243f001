// Package models defines the data structures for the Fillout webhook service.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an opaque row identity. The hosted store may hand out either uuid
// strings or bigserial numbers; both decode into an ID.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identity as text.
func (id ID) String() string {
	return string(id)
}

// School represents the organization hosting an event.
type School struct {
	ID           ID      `json:"id" db:"id"`
	Name         *string `json:"name" db:"name"`
	City         *string `json:"city" db:"city"`
	State        *string `json:"state" db:"state"`
	Country      *string `json:"country" db:"country"`
	ContactEmail *string `json:"contact_email" db:"contact_email"`
}

// SchoolInput holds the five mapped columns written on insert and update.
// Nil fields are written as NULL.
type SchoolInput struct {
	Name         *string `json:"name"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	ContactEmail *string `json:"contact_email"`
}

// SchoolInputFromForm projects the school columns out of a normalized form.
func SchoolInputFromForm(form NormalizedForm) SchoolInput {
	return SchoolInput{
		Name:         form.Text(FieldSchoolName),
		City:         form.Text(FieldCity),
		State:        form.Text(FieldState),
		Country:      form.Text(FieldCountry),
		ContactEmail: form.Text(FieldSchoolContactEmail),
	}
}
