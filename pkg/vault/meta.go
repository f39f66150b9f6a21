package vault

import (
	"context"
	"errors"
	"fmt"

	"adminpanel/models"

	"gorm.io/gorm"
)

// ErrFileNotFound is returned when a metadata row does not exist.
var ErrFileNotFound = errors.New("file not found")

// GormMeta is the files table.
type GormMeta struct {
	db *gorm.DB
}

func NewGormMeta(db *gorm.DB) *GormMeta {
	return &GormMeta{db: db}
}

func (g *GormMeta) List(ctx context.Context) ([]models.FileMeta, error) {
	rows := []models.FileMeta{}
	if err := g.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return rows, nil
}

func (g *GormMeta) Insert(ctx context.Context, m *models.FileMeta) error {
	return g.db.WithContext(ctx).Create(m).Error
}

func (g *GormMeta) Get(ctx context.Context, id uint) (models.FileMeta, error) {
	var m models.FileMeta
	if err := g.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return m, ErrFileNotFound
		}
		return m, err
	}
	return m, nil
}
