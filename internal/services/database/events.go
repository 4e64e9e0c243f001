package database

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fillout-webhook/internal/models"
)

var eventColumns = []string{
	"id::text AS id",
	"school_id::text AS school_id",
	"title",
	"goal_trees",
	"event_date",
	"description",
	"trees_planted",
	"pickup",
}

// EventRepository handles event database operations.
type EventRepository struct {
	q Querier
}

// NewEventRepository creates a new event repository.
func NewEventRepository(q Querier) *EventRepository {
	return &EventRepository{q: q}
}

// Create inserts a new event. trees_planted and pickup are only written when
// set on the input.
func (r *EventRepository) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	columns := []string{"school_id", "title", "goal_trees", "event_date", "description"}
	values := []any{sq.Expr("?::uuid", in.SchoolID.String()), in.Title, in.GoalTrees, in.EventDate, in.Description}

	if in.TreesPlanted != nil {
		columns = append(columns, "trees_planted")
		values = append(values, *in.TreesPlanted)
	}
	if in.Pickup != nil {
		columns = append(columns, "pickup")
		values = append(values, *in.Pickup)
	}

	query, args, err := psql.Insert("events").
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING " + strings.Join(eventColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var event models.Event
	if err := pgxscan.Get(ctx, r.q, &event, query, args...); err != nil {
		return nil, mapError(err, "create event")
	}
	return &event, nil
}
