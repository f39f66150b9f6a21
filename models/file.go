package models

import "time"

// FileMeta is one row of the vault's metadata table. Rows are written once
// after a successful upload and never updated.
type FileMeta struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	URL        string    `gorm:"size:1024;not null" json:"url"`
	Size       string    `gorm:"size:32" json:"size"` // human readable, e.g. "12.3 KB"
	UploadedBy string    `gorm:"column:uploaded_by;size:255" json:"uploaded_by"`
	ObjectKey  string    `gorm:"column:object_key;size:512" json:"object_key"`
}

// TableName keeps the table name stable regardless of gorm's pluralizer.
func (FileMeta) TableName() string { return "files" }
