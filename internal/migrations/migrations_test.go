package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrationsOrdersByVersion(t *testing.T) {
	files := fstest.MapFS{
		"V10__later.sql":   {Data: []byte("SELECT 1;")},
		"V2__second.sql":   {Data: []byte("SELECT 1;")},
		"V1__init.sql":     {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("ignored")},
		"nested/V3__x.sql": {Data: []byte("SELECT 1;")},
	}
	migs, err := listMigrations(files)
	require.NoError(t, err)

	names := []string{}
	for _, mig := range migs {
		names = append(names, mig.Name)
	}
	assert.Equal(t, []string{"V1__init.sql", "V2__second.sql", "V10__later.sql"}, names)
	assert.Equal(t, "10", migs[2].Version)
}

func TestListMigrationsRejectsBadNames(t *testing.T) {
	_, err := listMigrations(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}})
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	migs, err := listMigrations(Files())
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, "V1__init.sql", migs[0].Name)
}

func TestParseVersion(t *testing.T) {
	assert.Equal(t, "3", parseVersion("V3__add_index.sql"))
	assert.Equal(t, "", parseVersion("V3.sql"))
	assert.Equal(t, "", parseVersion("3__x.sql"))
}
