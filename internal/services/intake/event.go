package intake

import (
	"context"
	"fmt"

	"fillout-webhook/internal/models"
	"fillout-webhook/internal/services/store"
)

// EventCreator derives an event from a normalized form and inserts it.
type EventCreator struct {
	store   store.EventStore
	variant models.EventVariant
}

// NewEventCreator creates an event creator. An invalid variant falls back to
// basic.
func NewEventCreator(s store.EventStore, variant models.EventVariant) *EventCreator {
	if !variant.IsValid() {
		variant = models.EventVariantBasic
	}
	return &EventCreator{store: s, variant: variant}
}

// Create inserts the event for schoolID. A failed insert is returned as
// *models.PersistenceError.
func (c *EventCreator) Create(ctx context.Context, form models.NormalizedForm, schoolID models.ID) (*models.Event, error) {
	event, err := c.store.InsertEvent(ctx, BuildEventInput(form, schoolID, c.variant))
	if err != nil {
		return nil, &models.PersistenceError{Step: models.StepEvent, Err: err}
	}
	return event, nil
}

// BuildEventInput applies the form-to-event rules:
//
//   - title is event_type, or "Tree Planting Event"
//   - goal_trees is the leading integer of event_estimate_trees, else
//     estimated_trees, else 0
//   - event_date is event_start_date, else event_date_range
//   - description is "<event_type or Event> at <school_name>", with
//     " (<start> to <end>)" appended when both dates are present
func BuildEventInput(form models.NormalizedForm, schoolID models.ID, variant models.EventVariant) models.EventInput {
	eventType, hasType := form.NonEmpty(models.FieldEventType)

	title := models.DefaultEventTitle
	if hasType {
		title = eventType
	}

	goal, ok := form.Int(models.FieldEventEstimateTrees)
	if !ok {
		goal, _ = form.Int(models.FieldEstimatedTrees)
	}

	var eventDate *string
	start, hasStart := form.NonEmpty(models.FieldEventStartDate)
	if hasStart {
		eventDate = &start
	} else if dateRange, ok := form.NonEmpty(models.FieldEventDateRange); ok {
		eventDate = &dateRange
	}

	descType := models.DefaultEventType
	if hasType {
		descType = eventType
	}
	schoolName := ""
	if name := form.Text(models.FieldSchoolName); name != nil {
		schoolName = *name
	}
	description := fmt.Sprintf("%s at %s", descType, schoolName)

	if end, hasEnd := form.NonEmpty(models.FieldEventEndDate); hasStart && hasEnd {
		description += fmt.Sprintf(" (%s to %s)", start, end)
	}

	in := models.EventInput{
		SchoolID:    schoolID,
		Title:       title,
		GoalTrees:   goal,
		EventDate:   eventDate,
		Description: description,
	}

	if variant == models.EventVariantExtended {
		trees, pickup := 0, false
		in.TreesPlanted = &trees
		in.Pickup = &pickup
	}

	return in
}
