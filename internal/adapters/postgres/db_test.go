package postgres

import (
    "errors"
    "io/fs"
    "strings"
    "testing"

    "github.com/jackc/pgx/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightdesk/internal/domain"
)

func TestMigrationsEmbedded(t *testing.T) {
    files, err := fs.Glob(migrations, "migrations/*.sql")
    require.NoError(t, err)
    require.Len(t, files, 3)
    for _, f := range files {
        body, err := fs.ReadFile(migrations, f)
        require.NoError(t, err)
        assert.True(t, strings.Contains(string(body), "-- +goose Up"), f)
        assert.True(t, strings.Contains(string(body), "-- +goose Down"), f)
    }
}

func TestValidID(t *testing.T) {
    assert.NoError(t, validID("7d444840-9dc0-11d1-b245-5ffdce74fad2"))
    assert.ErrorIs(t, validID("42"), domain.ErrNotFound)
    assert.ErrorIs(t, validID(""), domain.ErrNotFound)
}

func TestNotFound(t *testing.T) {
    assert.ErrorIs(t, notFound(pgx.ErrNoRows), domain.ErrNotFound)
    other := errors.New("conn reset")
    assert.Equal(t, other, notFound(other))
    assert.NoError(t, notFound(nil))
}
