package database

import (
	"context"

	"fillout-webhook/internal/models"
	"fillout-webhook/internal/services/store"
)

// Store implements store.Store directly against PostgreSQL.
type Store struct {
	db      *DB
	schools *SchoolRepository
	events  *EventRepository
}

var _ store.Store = (*Store)(nil)

// NewStore creates a store over db.
func NewStore(db *DB) *Store {
	return &Store{
		db:      db,
		schools: NewSchoolRepository(db.Pool()),
		events:  NewEventRepository(db.Pool()),
	}
}

// FindSchool implements store.SchoolStore.
func (s *Store) FindSchool(ctx context.Context, name, city *string) (*models.School, error) {
	return s.schools.FindByNameAndCity(ctx, name, city)
}

// InsertSchool implements store.SchoolStore.
func (s *Store) InsertSchool(ctx context.Context, in models.SchoolInput) (*models.School, error) {
	return s.schools.Create(ctx, in)
}

// UpdateSchool implements store.SchoolStore.
func (s *Store) UpdateSchool(ctx context.Context, id models.ID, in models.SchoolInput) (*models.School, error) {
	return s.schools.Update(ctx, id, in)
}

// InsertEvent implements store.EventStore.
func (s *Store) InsertEvent(ctx context.Context, in models.EventInput) (*models.Event, error) {
	return s.events.Create(ctx, in)
}

// Probe pings the pool and reads from the schools table.
func (s *Store) Probe(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return err
	}
	return s.schools.Probe(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.db.Close()
}
