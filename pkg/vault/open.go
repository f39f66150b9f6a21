package vault

import (
	"context"

	appconfig "adminpanel/pkg/config"

	"gorm.io/gorm"
)

// S3ConfigFrom picks the bucket settings out of the application config.
func S3ConfigFrom(c *appconfig.Config) S3Config {
	return S3Config{
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3Endpoint,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		PublicBaseURL: c.S3PublicBaseURL,
	}
}

// OpenPostgres wires the production vault: objects in S3, metadata in the
// files table and change notifications over LISTEN on a connection of its own.
func OpenPostgres(ctx context.Context, db *gorm.DB, c *appconfig.Config) (*Service, *S3Storage, *PGFeed, error) {
	storage, err := NewS3Storage(ctx, S3ConfigFrom(c))
	if err != nil {
		return nil, nil, nil, err
	}
	return NewService(storage, NewGormMeta(db)), storage, NewPGFeed(c.DatabaseDSN), nil
}
