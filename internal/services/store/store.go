// Package store defines the persistence boundary used by the intake pipeline.
package store

import (
	"context"

	"fillout-webhook/internal/models"
)

// SchoolStore reads and writes school rows. FindSchool returns
// models.ErrNotFound when no single row matches (name, city); a nil name or
// city matches NULL.
type SchoolStore interface {
	FindSchool(ctx context.Context, name, city *string) (*models.School, error)
	InsertSchool(ctx context.Context, in models.SchoolInput) (*models.School, error)
	UpdateSchool(ctx context.Context, id models.ID, in models.SchoolInput) (*models.School, error)
}

// EventStore writes event rows.
type EventStore interface {
	InsertEvent(ctx context.Context, in models.EventInput) (*models.Event, error)
}

// Store is the full persistence surface, including the health probe.
type Store interface {
	SchoolStore
	EventStore
	Probe(ctx context.Context) error
	Close()
}
