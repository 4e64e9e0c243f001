package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"fillout-webhook/internal/models"
)

// Memory is an in-process Store. It backs STORE_BACKEND=memory for local dry
// runs and doubles as the store in pipeline and handler tests.
//
// The Err* fields, when set, are returned by the matching operation instead
// of touching the data.
type Memory struct {
	mu      sync.Mutex
	schools []models.School
	events  []models.Event

	ErrFind         error
	ErrInsertSchool error
	ErrUpdateSchool error
	ErrInsertEvent  error
	ErrProbe        error

	// Calls counts invocations per operation name.
	Calls map[string]int
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{Calls: make(map[string]int)}
}

func (m *Memory) record(op string) {
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[op]++
}

// FindSchool implements SchoolStore. Several matches count as not found.
func (m *Memory) FindSchool(_ context.Context, name, city *string) (*models.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("find_school")

	if m.ErrFind != nil {
		return nil, m.ErrFind
	}

	var found []models.School
	for _, s := range m.schools {
		if sameText(s.Name, name) && sameText(s.City, city) {
			found = append(found, s)
		}
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("find school: %d matches: %w", len(found), models.ErrNotFound)
	}
	school := found[0]
	return &school, nil
}

// InsertSchool implements SchoolStore.
func (m *Memory) InsertSchool(_ context.Context, in models.SchoolInput) (*models.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("insert_school")

	if m.ErrInsertSchool != nil {
		return nil, m.ErrInsertSchool
	}

	school := schoolFromInput(models.ID(uuid.NewString()), in)
	m.schools = append(m.schools, school)
	return &school, nil
}

// UpdateSchool implements SchoolStore.
func (m *Memory) UpdateSchool(_ context.Context, id models.ID, in models.SchoolInput) (*models.School, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update_school")

	if m.ErrUpdateSchool != nil {
		return nil, m.ErrUpdateSchool
	}

	for i := range m.schools {
		if m.schools[i].ID == id {
			m.schools[i] = schoolFromInput(id, in)
			school := m.schools[i]
			return &school, nil
		}
	}
	return nil, fmt.Errorf("update school %s: %w", id, models.ErrNotFound)
}

// InsertEvent implements EventStore. The school must exist.
func (m *Memory) InsertEvent(_ context.Context, in models.EventInput) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("insert_event")

	if m.ErrInsertEvent != nil {
		return nil, m.ErrInsertEvent
	}

	known := false
	for _, s := range m.schools {
		if s.ID == in.SchoolID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("insert event: school %s does not exist", in.SchoolID)
	}

	event := models.Event{
		ID:           models.ID(uuid.NewString()),
		SchoolID:     in.SchoolID,
		Title:        in.Title,
		GoalTrees:    in.GoalTrees,
		EventDate:    in.EventDate,
		Description:  in.Description,
		TreesPlanted: in.TreesPlanted,
		Pickup:       in.Pickup,
	}
	m.events = append(m.events, event)
	return &event, nil
}

// Probe implements Store.
func (m *Memory) Probe(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("probe")
	return m.ErrProbe
}

// Close implements Store.
func (m *Memory) Close() {}

// Schools returns a copy of the stored schools.
func (m *Memory) Schools() []models.School {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.School(nil), m.schools...)
}

// Events returns a copy of the stored events.
func (m *Memory) Events() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Event(nil), m.events...)
}

// AddSchool seeds a school row and returns it.
func (m *Memory) AddSchool(in models.SchoolInput) models.School {
	m.mu.Lock()
	defer m.mu.Unlock()
	school := schoolFromInput(models.ID(uuid.NewString()), in)
	m.schools = append(m.schools, school)
	return school
}

func schoolFromInput(id models.ID, in models.SchoolInput) models.School {
	return models.School{
		ID:           id,
		Name:         in.Name,
		City:         in.City,
		State:        in.State,
		Country:      in.Country,
		ContactEmail: in.ContactEmail,
	}
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
