package database

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fillout-webhook/internal/models"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var schoolColumns = []string{
	"id::text AS id",
	"name",
	"city",
	"state",
	"country",
	"contact_email",
}

// SchoolRepository handles school database operations.
type SchoolRepository struct {
	q Querier
}

// NewSchoolRepository creates a new school repository.
func NewSchoolRepository(q Querier) *SchoolRepository {
	return &SchoolRepository{q: q}
}

// FindByNameAndCity returns the single school matching (name, city). Zero or
// several matches both return models.ErrNotFound.
func (r *SchoolRepository) FindByNameAndCity(ctx context.Context, name, city *string) (*models.School, error) {
	query, args, err := psql.Select(schoolColumns...).
		From("schools").
		Where(eqOrNull("name", name)).
		Where(eqOrNull("city", city)).
		OrderBy("created_at").
		Limit(2).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var schools []*models.School
	if err := pgxscan.Select(ctx, r.q, &schools, query, args...); err != nil {
		return nil, mapError(err, "find school")
	}

	switch len(schools) {
	case 0:
		return nil, fmt.Errorf("find school: %w", models.ErrNotFound)
	case 1:
		return schools[0], nil
	default:
		return nil, fmt.Errorf("find school: %d rows share name and city: %w", len(schools), models.ErrNotFound)
	}
}

// Create inserts a new school.
func (r *SchoolRepository) Create(ctx context.Context, in models.SchoolInput) (*models.School, error) {
	query, args, err := psql.Insert("schools").
		Columns("name", "city", "state", "country", "contact_email").
		Values(in.Name, in.City, in.State, in.Country, in.ContactEmail).
		Suffix("RETURNING " + strings.Join(schoolColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var school models.School
	if err := pgxscan.Get(ctx, r.q, &school, query, args...); err != nil {
		return nil, mapError(err, "create school")
	}
	return &school, nil
}

// Update overwrites every mapped column of the school with id.
func (r *SchoolRepository) Update(ctx context.Context, id models.ID, in models.SchoolInput) (*models.School, error) {
	query, args, err := psql.Update("schools").
		Set("name", in.Name).
		Set("city", in.City).
		Set("state", in.State).
		Set("country", in.Country).
		Set("contact_email", in.ContactEmail).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Expr("id = ?::uuid", id.String())).
		Suffix("RETURNING " + strings.Join(schoolColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var school models.School
	if err := pgxscan.Get(ctx, r.q, &school, query, args...); err != nil {
		return nil, mapError(err, "update school "+id.String())
	}
	return &school, nil
}

// Probe runs a read-only query against the schools table.
func (r *SchoolRepository) Probe(ctx context.Context) error {
	var ids []string
	if err := pgxscan.Select(ctx, r.q, &ids, "SELECT id::text FROM schools LIMIT 1"); err != nil {
		return mapError(err, "probe schools")
	}
	return nil
}

func eqOrNull(column string, value *string) sq.Sqlizer {
	if value == nil {
		return sq.Expr(column + " IS NULL")
	}
	return sq.Eq{column: *value}
}
