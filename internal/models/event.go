// Package models defines the data structures for the Fillout webhook service.
package models

import "strings"

// EventVariant selects which optional columns are written to the events table.
type EventVariant string

const (
	// EventVariantBasic writes only the core event columns.
	EventVariantBasic EventVariant = "basic"
	// EventVariantExtended also writes trees_planted and pickup.
	EventVariantExtended EventVariant = "extended"
)

// IsValid checks if the variant is known.
func (v EventVariant) IsValid() bool {
	return v == EventVariantBasic || v == EventVariantExtended
}

// ParseEventVariant normalizes a configured variant name.
func ParseEventVariant(s string) (EventVariant, error) {
	v := EventVariant(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", ErrInvalidEventVariant
	}
	return v, nil
}

// Default values used when the form leaves a field empty.
const (
	DefaultEventTitle = "Tree Planting Event"
	DefaultEventType  = "Event"
)

// Event represents a single tree-planting activity tied to one school.
type Event struct {
	ID           ID      `json:"id" db:"id"`
	SchoolID     ID      `json:"school_id" db:"school_id"`
	Title        string  `json:"title" db:"title"`
	GoalTrees    int     `json:"goal_trees" db:"goal_trees"`
	EventDate    *string `json:"event_date" db:"event_date"`
	Description  string  `json:"description" db:"description"`
	TreesPlanted *int    `json:"trees_planted,omitempty" db:"trees_planted"`
	Pickup       *bool   `json:"pickup,omitempty" db:"pickup"`
}

// EventInput represents the data needed to create a new event. TreesPlanted
// and Pickup are nil for the basic variant and omitted from the insert.
type EventInput struct {
	SchoolID     ID      `json:"school_id"`
	Title        string  `json:"title"`
	GoalTrees    int     `json:"goal_trees"`
	EventDate    *string `json:"event_date"`
	Description  string  `json:"description"`
	TreesPlanted *int    `json:"trees_planted,omitempty"`
	Pickup       *bool   `json:"pickup,omitempty"`
}
