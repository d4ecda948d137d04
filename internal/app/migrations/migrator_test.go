package migrations

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := LoadMigrations(embeddedFiles, "sql")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "create_initial_schema", migrations[0].Name)
	assert.Contains(t, migrations[0].Up, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, migrations[0].Down, "DROP TABLE IF EXISTS users")

	assert.Equal(t, "0002", migrations[1].Version)
	assert.Contains(t, migrations[1].Up, "prerequisite_groups")
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0010_b.up.sql":   {Data: []byte("B")},
		"m/0010_b.down.sql": {Data: []byte("-B")},
		"m/0002_a.up.sql":   {Data: []byte("A")},
		"m/0002_a.down.sql": {Data: []byte("-A")},
		"m/README.md":       {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0002", migrations[0].Version)
	assert.Equal(t, "0010", migrations[1].Version)
	assert.Equal(t, "-B", migrations[1].Down)
}

func TestLoadMigrations_RequiresPairs(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.up.sql": {Data: []byte("A")},
	}

	_, err := LoadMigrations(fsys, "m")
	assert.ErrorContains(t, err, "needs both up and down")
}

func TestLoadMigrations_RejectsBadNames(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{"m/0001_a.sql": {Data: []byte("A")}}, "m")
	assert.Error(t, err)

	_, err = LoadMigrations(fstest.MapFS{"m/init.up.sql": {Data: []byte("A")}}, "m")
	assert.Error(t, err)
}

// TestMigrator_UpDown runs against a real database when TEST_DATABASE_URL is set.
func TestMigrator_UpDown(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping migration integration test")
	}

	ctx := context.Background()

	// Work in a private schema so other integration suites sharing the database are untouched.
	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer admin.Close()
	_, err = admin.Exec(ctx, `DROP SCHEMA IF EXISTS migrator_test CASCADE; CREATE SCHEMA migrator_test`)
	require.NoError(t, err)
	defer admin.Exec(ctx, `DROP SCHEMA IF EXISTS migrator_test CASCADE`)

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = "migrator_test"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	defer pool.Close()

	m, err := NewMigrator(pool, zerolog.Nop())
	require.NoError(t, err)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	again, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)

	reverted, err := m.Down(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, reverted)

	versions, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001"}, versions)

	_, err = m.Up(ctx)
	require.NoError(t, err)
}
