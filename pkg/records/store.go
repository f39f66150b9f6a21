// Package records is the store adapter for student records: list, create,
// full-replace update and delete of a single record type.
package records

import (
	"context"
	"errors"
	"fmt"

	"adminpanel/models"
)

var (
	// ErrNotFound is returned by UpdateByID when the id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrMissingField is returned when one of the five required fields is blank.
	ErrMissingField = errors.New("required field missing")
)

// Fields are the five caller-supplied values of a record. Update always
// replaces all of them.
type Fields struct {
	Name   string `json:"name" binding:"required"`
	Course string `json:"course" binding:"required"`
	RollNo string `json:"rollNo" binding:"required"`
	Batch  string `json:"batch" binding:"required"`
	Timing string `json:"timing" binding:"required"`
}

// Validate checks presence only; any non-empty string, blanks included, is accepted.
func (f Fields) Validate() error {
	for _, v := range []struct{ name, val string }{
		{"name", f.Name},
		{"course", f.Course},
		{"rollNo", f.RollNo},
		{"batch", f.Batch},
		{"timing", f.Timing},
	} {
		if v.val == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, v.name)
		}
	}
	return nil
}

// Apply copies the fields onto rec.
func (f Fields) Apply(rec *models.Record) {
	rec.Name = f.Name
	rec.Course = f.Course
	rec.RollNo = f.RollNo
	rec.Batch = f.Batch
	rec.Timing = f.Timing
}

// FieldsOf extracts the editable fields of rec.
func FieldsOf(rec models.Record) Fields {
	return Fields{Name: rec.Name, Course: rec.Course, RollNo: rec.RollNo, Batch: rec.Batch, Timing: rec.Timing}
}

// Store persists records.
type Store interface {
	// ListAll returns every record in the store's default order.
	ListAll(ctx context.Context) ([]models.Record, error)
	// Create inserts a new record; the store assigns its id.
	Create(ctx context.Context, f Fields) (models.Record, error)
	// UpdateByID replaces all fields of an existing record and returns it.
	UpdateByID(ctx context.Context, id string, f Fields) (models.Record, error)
	// DeleteByID removes a record. Deleting an absent id is not an error.
	DeleteByID(ctx context.Context, id string) error
}
