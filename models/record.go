package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Record is one student entry managed by the admin panel. All five text
// fields are free-form; the store enforces no uniqueness.
type Record struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Course    string    `gorm:"type:text;not null" json:"course"`
	RollNo    string    `gorm:"column:roll_no;type:text;not null" json:"rollNo"`
	Batch     string    `gorm:"type:text;not null" json:"batch"`
	Timing    string    `gorm:"type:text;not null" json:"timing"`
}

// NewRecordID returns a fresh, lexically time-ordered identifier.
func NewRecordID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// BeforeCreate assigns the identifier when the caller did not.
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewRecordID()
	}
	return nil
}
