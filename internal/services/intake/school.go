// Package intake turns a webhook body into persisted school and event rows.
package intake

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"fillout-webhook/internal/models"
	"fillout-webhook/internal/services/store"
	"fillout-webhook/internal/utils"
)

// SchoolUpserter finds a school by (name, city) and either overwrites it or
// inserts a new row.
//
// There is no locking between the lookup and the write, so two concurrent
// submissions for a new school can both insert.
type SchoolUpserter struct {
	store store.SchoolStore
	log   *zap.Logger
}

// NewSchoolUpserter creates an upserter over s.
func NewSchoolUpserter(s store.SchoolStore) *SchoolUpserter {
	return &SchoolUpserter{store: s, log: utils.GetLogger()}
}

// Upsert writes the school described by form and returns the stored row.
// Lookup failures other than not-found are logged and treated as not-found.
// Write failures are returned as *models.PersistenceError.
func (u *SchoolUpserter) Upsert(ctx context.Context, form models.NormalizedForm) (*models.School, error) {
	in := models.SchoolInputFromForm(form)

	existing, err := u.store.FindSchool(ctx, in.Name, in.City)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			u.log.Warn("School lookup failed, creating new record",
				utils.Error(err),
			)
		}
		existing = nil
	}

	var school *models.School
	if existing != nil {
		school, err = u.store.UpdateSchool(ctx, existing.ID, in)
	} else {
		school, err = u.store.InsertSchool(ctx, in)
	}
	if err != nil {
		return nil, &models.PersistenceError{Step: models.StepSchool, Err: err}
	}

	u.log.Debug("School upserted",
		utils.Stringer("school_id", school.ID),
		utils.Bool("updated", existing != nil),
	)
	return school, nil
}
