package liveview

import (
	"context"

	"adminpanel/models"
	"adminpanel/pkg/records"
)

// Form backs both create and edit. When an editing target is set Submit
// updates that record, otherwise it creates a new one.
type Form struct {
	Fields records.Fields

	client    *Client
	editingID string
}

func NewForm(c *Client) *Form {
	return &Form{client: c}
}

// Edit loads rec into the form and makes it the editing target.
func (f *Form) Edit(rec models.Record) {
	f.Fields = records.FieldsOf(rec)
	f.editingID = rec.ID
}

// Editing returns the current target id.
func (f *Form) Editing() (string, bool) {
	return f.editingID, f.editingID != ""
}

// Reset clears the fields and the editing target.
func (f *Form) Reset() {
	f.Fields = records.Fields{}
	f.editingID = ""
}

// Submit sends the form. On success the form is reset; it does not wait for
// the change event to reach the local list.
func (f *Form) Submit(ctx context.Context) (models.Record, error) {
	var (
		rec models.Record
		err error
	)
	if f.editingID != "" {
		rec, err = f.client.Update(ctx, f.editingID, f.Fields)
	} else {
		rec, err = f.client.Create(ctx, f.Fields)
	}
	if err != nil {
		return models.Record{}, err
	}
	f.Reset()
	return rec, nil
}
