package records

import (
	"context"
	"errors"
	"fmt"

	"adminpanel/models"

	"gorm.io/gorm"
)

// GormStore keeps records in a relational table through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListAll(ctx context.Context) ([]models.Record, error) {
	items := []models.Record{}
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return items, nil
}

func (s *GormStore) Create(ctx context.Context, f Fields) (models.Record, error) {
	if err := f.Validate(); err != nil {
		return models.Record{}, err
	}
	var rec models.Record
	f.Apply(&rec)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.Record{}, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

// UpdateByID runs the read and the write in one transaction so callers never
// observe a half-applied update.
func (s *GormStore) UpdateByID(ctx context.Context, id string, f Fields) (models.Record, error) {
	if err := f.Validate(); err != nil {
		return models.Record{}, err
	}
	var rec models.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		f.Apply(&rec)
		return tx.Save(&rec).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Record{}, err
		}
		return models.Record{}, fmt.Errorf("update record %s: %w", id, err)
	}
	return rec, nil
}

func (s *GormStore) DeleteByID(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}
