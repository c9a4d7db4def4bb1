package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	d, err = ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, Down, d)

	_, err = ParseDirection("sideways")
	assert.ErrorContains(t, err, "sideways")
}

func TestMigrate_RejectsBadInputBeforeConnecting(t *testing.T) {
	dsn := "postgres://nobody@127.0.0.1:1/none?sslmode=disable"

	err := Migrate(dsn, fstest.MapFS{}, "migrations", Direction("sideways"))
	assert.ErrorContains(t, err, "unknown migration direction")

	err = Migrate(dsn, fstest.MapFS{}, "migrations", Up)
	assert.ErrorContains(t, err, "open migrations")
}
