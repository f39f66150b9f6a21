package records

import (
	"context"
	"os"
	"strings"
	"testing"

	"adminpanel/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Opt-in: DB_DSN_TEST=1 and DB_DSN pointing at a scratch database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	db, err := gorm.Open(postgres.Open(os.Getenv("DB_DSN")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Record{}))
	require.NoError(t, db.Exec("DELETE FROM records").Error)
	return db
}

func TestGormStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(openTestDB(t))

	rec, err := s.Create(ctx, sample())
	require.NoError(t, err)
	require.Len(t, rec.ID, 26)

	next := Fields{Name: "A2", Course: "Y", RollNo: "2", Batch: "B2", Timing: "10am"}
	upd, err := s.UpdateByID(ctx, rec.ID, next)
	require.NoError(t, err)
	assert.Equal(t, next, FieldsOf(upd))

	items, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, next, FieldsOf(items[0]))

	_, err = s.UpdateByID(ctx, "missing", next)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteByID(ctx, rec.ID))
	require.NoError(t, s.DeleteByID(ctx, rec.ID))
	items, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGormStore_LongValues(t *testing.T) {
	s := NewGormStore(openTestDB(t))
	f := sample()
	f.Batch = strings.Repeat("b", 500)
	f.Timing = strings.Repeat("t", 500)
	rec, err := s.Create(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, f, FieldsOf(rec))
}

func TestGormStore_CreateRequiresFields(t *testing.T) {
	s := NewGormStore(openTestDB(t))
	_, err := s.Create(context.Background(), Fields{Name: "A"})
	assert.ErrorIs(t, err, ErrMissingField)
}
