package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	valid, skipped := TableNames(" records, files ,,users;drop table x,_tmp1")
	assert.Equal(t, []string{"records", "files", "_tmp1"}, valid)
	assert.Equal(t, []string{"users;drop table x"}, skipped)
}

func TestTruncateStatement(t *testing.T) {
	valid, _ := TableNames(DefaultTables)
	assert.Equal(t,
		`TRUNCATE TABLE "records", "files", "refresh_tokens", "users" RESTART IDENTITY CASCADE`,
		TruncateStatement(valid))
}
