package supabase

import (
	"context"
	"fmt"

	"fillout-webhook/internal/models"
	"fillout-webhook/internal/services/store"
)

// Table names in the Supabase project.
const (
	TableSchools = "schools"
	TableEvents  = "events"
)

// Store implements store.Store over the PostgREST API.
type Store struct {
	client *Client
}

var _ store.Store = (*Store)(nil)

// NewStore creates a store backed by client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// FindSchool returns the school matching (name, city) exactly.
func (s *Store) FindSchool(ctx context.Context, name, city *string) (*models.School, error) {
	var school models.School
	err := s.client.SelectSingle(ctx, TableSchools, []Filter{
		Eq("name", name),
		Eq("city", city),
	}, &school)
	if IsNoSingleRow(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find school: %w", err)
	}
	return &school, nil
}

// InsertSchool creates a school row.
func (s *Store) InsertSchool(ctx context.Context, in models.SchoolInput) (*models.School, error) {
	var school models.School
	if err := s.client.InsertSingle(ctx, TableSchools, in, &school); err != nil {
		return nil, fmt.Errorf("failed to create school: %w", err)
	}
	return &school, nil
}

// UpdateSchool overwrites the mapped columns of the school with id.
func (s *Store) UpdateSchool(ctx context.Context, id models.ID, in models.SchoolInput) (*models.School, error) {
	idText := id.String()

	var school models.School
	if err := s.client.UpdateSingle(ctx, TableSchools, []Filter{Eq("id", &idText)}, in, &school); err != nil {
		return nil, fmt.Errorf("failed to update school %s: %w", id, err)
	}
	return &school, nil
}

// InsertEvent creates an event row.
func (s *Store) InsertEvent(ctx context.Context, in models.EventInput) (*models.Event, error) {
	var event models.Event
	if err := s.client.InsertSingle(ctx, TableEvents, in, &event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

// Probe performs a read-only query against the schools table.
func (s *Store) Probe(ctx context.Context) error {
	var rows []map[string]any
	if err := s.client.Select(ctx, TableSchools, "id", nil, 1, &rows); err != nil {
		return err
	}
	return nil
}

// Close is a no-op; the HTTP client holds no long-lived resources.
func (s *Store) Close() {}
