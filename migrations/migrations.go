// Package migrations embeds the SQL migrations applied with goose after
// gorm's AutoMigrate has created the tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
