package db

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
)

func TestMigrationFilesEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")

	up, err := fs.ReadFile(migrationFiles, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"experiences", "ai_patterns", "personal_info", "skills", "website_content", "media_files", "contact_submissions"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table, table)
	}

	assert.Contains(t, names, "000002_content_entities.up.sql")
	assert.Contains(t, names, "000002_content_entities.down.sql")
	up, err = fs.ReadFile(migrationFiles, "migrations/000002_content_entities.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS content_entities")
	assert.Contains(t, string(up), "'publication'")
}

func TestNotFound(t *testing.T) {
	err := notFound(pgx.ErrNoRows, "experience", "abc")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "experience abc")

	err = notFound(errors.New("connection reset"), "experience", "abc")
	assert.False(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "failed to get experience")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_real\_ a\\b`, escapeLike(`100% _real_ a\b`))
	assert.Equal(t, "Acme", escapeLike("Acme"))
}

func TestNonNil(t *testing.T) {
	assert.NotNil(t, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
	assert.True(t, strings.HasPrefix(experienceColumns, "id, category"))
}
