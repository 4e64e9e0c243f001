package database

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fillout-webhook/internal/models"
)

func ptr[T any](v T) *T { return &v }

var schoolRowColumns = []string{"id", "name", "city", "state", "country", "contact_email"}

var eventRowColumns = []string{"id", "school_id", "title", "goal_trees", "event_date", "description", "trees_planted", "pickup"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestSchoolRepository_FindByNameAndCity(t *testing.T) {
	tests := []struct {
		name    string
		school  *string
		city    *string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		check   func(t *testing.T, s *models.School)
	}{
		{
			name:   "found",
			school: ptr("Lincoln Elementary"),
			city:   ptr("Austin"),
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(schoolRowColumns).
					AddRow(models.ID("s-1"), ptr("Lincoln Elementary"), ptr("Austin"), ptr("TX"), ptr("USA"), ptr("office@lincoln.edu"))
				mock.ExpectQuery(`SELECT (.+) FROM schools WHERE name = \$1 AND city = \$2`).
					WithArgs("Lincoln Elementary", "Austin").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, s *models.School) {
				assert.Equal(t, models.ID("s-1"), s.ID)
				assert.Equal(t, "TX", *s.State)
				assert.Equal(t, "office@lincoln.edu", *s.ContactEmail)
			},
		},
		{
			name:   "no rows",
			school: ptr("Nowhere"),
			city:   ptr("Austin"),
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM schools`).
					WithArgs("Nowhere", "Austin").
					WillReturnRows(pgxmock.NewRows(schoolRowColumns))
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:   "duplicate rows",
			school: ptr("Lincoln"),
			city:   ptr("Austin"),
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(schoolRowColumns).
					AddRow(models.ID("s-1"), ptr("Lincoln"), ptr("Austin"), ptr(""), ptr(""), ptr("")).
					AddRow(models.ID("s-2"), ptr("Lincoln"), ptr("Austin"), ptr(""), ptr(""), ptr(""))
				mock.ExpectQuery(`SELECT (.+) FROM schools`).
					WithArgs("Lincoln", "Austin").
					WillReturnRows(rows)
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:   "nil name matches null",
			school: nil,
			city:   ptr("Austin"),
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM schools WHERE name IS NULL AND city = \$1`).
					WithArgs("Austin").
					WillReturnRows(pgxmock.NewRows(schoolRowColumns))
			},
			wantErr: models.ErrNotFound,
		},
		{
			name:   "query error",
			school: ptr("Lincoln"),
			city:   ptr("Austin"),
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM schools`).
					WithArgs("Lincoln", "Austin").
					WillReturnError(errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)
			repo := NewSchoolRepository(mock)

			school, err := repo.FindByNameAndCity(context.Background(), tt.school, tt.city)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, school)
			case tt.check == nil:
				assert.Error(t, err)
				assert.False(t, errors.Is(err, models.ErrNotFound))
			default:
				require.NoError(t, err)
				tt.check(t, school)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSchoolRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewSchoolRepository(mock)

	in := models.SchoolInput{
		Name:    ptr("Lincoln Elementary"),
		City:    ptr("Austin"),
		Country: ptr("USA"),
	}

	rows := pgxmock.NewRows(schoolRowColumns).
		AddRow(models.ID("s-9"), ptr("Lincoln Elementary"), ptr("Austin"), (*string)(nil), ptr("USA"), (*string)(nil))
	mock.ExpectQuery(`INSERT INTO schools \(name,city,state,country,contact_email\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING`).
		WithArgs(in.Name, in.City, in.State, in.Country, in.ContactEmail).
		WillReturnRows(rows)

	school, err := repo.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.ID("s-9"), school.ID)
	assert.Nil(t, school.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepository_Update(t *testing.T) {
	mock := newMock(t)
	repo := NewSchoolRepository(mock)

	in := models.SchoolInput{
		Name:         ptr("Lincoln Elementary"),
		City:         ptr("Austin"),
		State:        ptr("TX"),
		Country:      ptr("USA"),
		ContactEmail: ptr("new@lincoln.edu"),
	}

	rows := pgxmock.NewRows(schoolRowColumns).
		AddRow(models.ID("s-1"), in.Name, in.City, in.State, in.Country, in.ContactEmail)
	mock.ExpectQuery(`UPDATE schools SET name = \$1, city = \$2, state = \$3, country = \$4, contact_email = \$5, updated_at = now\(\) WHERE id = \$6::uuid`).
		WithArgs(in.Name, in.City, in.State, in.Country, in.ContactEmail, "s-1").
		WillReturnRows(rows)

	school, err := repo.Update(context.Background(), "s-1", in)
	require.NoError(t, err)

	assert.Equal(t, "new@lincoln.edu", *school.ContactEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepository_UpdateFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewSchoolRepository(mock)

	mock.ExpectQuery(`UPDATE schools`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "s-1").
		WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied for table schools"})

	_, err := repo.Update(context.Background(), "s-1", models.SchoolInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42501")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   models.EventInput
		query   string
		args    []any
		treesDB *int
		pickDB  *bool
	}{
		{
			name: "basic variant",
			input: models.EventInput{
				SchoolID:    "s-1",
				Title:       "Tree Planting",
				GoalTrees:   50,
				EventDate:   ptr("2024-04-01"),
				Description: "Tree Planting at Lincoln Elementary",
			},
			query: `INSERT INTO events \(school_id,title,goal_trees,event_date,description\) VALUES \(\$1::uuid,\$2,\$3,\$4,\$5\) RETURNING`,
			args:  []any{"s-1", "Tree Planting", 50, ptr("2024-04-01"), "Tree Planting at Lincoln Elementary"},
		},
		{
			name: "extended variant",
			input: models.EventInput{
				SchoolID:     "s-1",
				Title:        "Tree Planting",
				GoalTrees:    50,
				EventDate:    ptr("2024-04-01"),
				Description:  "Tree Planting at Lincoln Elementary",
				TreesPlanted: ptr(0),
				Pickup:       ptr(false),
			},
			query:   `INSERT INTO events \(school_id,title,goal_trees,event_date,description,trees_planted,pickup\) VALUES \(\$1::uuid,\$2,\$3,\$4,\$5,\$6,\$7\) RETURNING`,
			args:    []any{"s-1", "Tree Planting", 50, ptr("2024-04-01"), "Tree Planting at Lincoln Elementary", 0, false},
			treesDB: ptr(0),
			pickDB:  ptr(false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewEventRepository(mock)

			rows := pgxmock.NewRows(eventRowColumns).
				AddRow(models.ID("e-1"), models.ID("s-1"), tt.input.Title, tt.input.GoalTrees, tt.input.EventDate, tt.input.Description, tt.treesDB, tt.pickDB)
			mock.ExpectQuery(tt.query).
				WithArgs(tt.args...).
				WillReturnRows(rows)

			event, err := repo.Create(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, models.ID("e-1"), event.ID)
			assert.Equal(t, models.ID("s-1"), event.SchoolID)
			assert.Equal(t, 50, event.GoalTrees)
			assert.Equal(t, tt.treesDB, event.TreesPlanted)
			assert.Equal(t, tt.pickDB, event.Pickup)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSchoolRepository_Probe(t *testing.T) {
	mock := newMock(t)
	repo := NewSchoolRepository(mock)

	mock.ExpectQuery(`SELECT id::text FROM schools LIMIT 1`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	assert.NoError(t, repo.Probe(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "op"))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows, "op"), models.ErrNotFound)
	assert.ErrorIs(t, mapError(context.Canceled, "op"), context.Canceled)

	err := mapError(&pgconn.PgError{Code: "23503", Message: "fk violation"}, "create event")
	assert.Contains(t, err.Error(), "create event")
	assert.Contains(t, err.Error(), "23503")
	assert.False(t, errors.Is(err, models.ErrNotFound))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(Migrations(), ".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00001_create_schools.sql", "00002_create_events.sql"}, names)
}
