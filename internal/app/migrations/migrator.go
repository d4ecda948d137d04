package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/curriculum/planner/internal/db"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var embeddedFiles embed.FS

// Migration is one reversible schema step loaded from NNNN_name.up.sql / NNNN_name.down.sql.
type Migration struct {
	Version string
	Name    string
	Up      string
	Down    string
}

// Migrator applies and reverts migrations, tracking them in schema_migrations.
type Migrator struct {
	db         db.DBTX
	migrations []Migration
	logger     zerolog.Logger
}

// NewMigrator creates a migrator over the migrations embedded in the binary.
func NewMigrator(database db.DBTX, lgr zerolog.Logger) (*Migrator, error) {
	migrations, err := LoadMigrations(embeddedFiles, "sql")
	if err != nil {
		return nil, err
	}
	return &Migrator{db: database, migrations: migrations, logger: lgr}, nil
}

// LoadMigrations reads every migration pair under dir, sorted by version.
// A version without both an up and a down file is an error.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		base := strings.TrimSuffix(entry.Name(), ".sql")
		var direction string
		switch {
		case strings.HasSuffix(base, ".up"):
			direction, base = "up", strings.TrimSuffix(base, ".up")
		case strings.HasSuffix(base, ".down"):
			direction, base = "down", strings.TrimSuffix(base, ".down")
		default:
			return nil, fmt.Errorf("migration %s must end in .up.sql or .down.sql", entry.Name())
		}

		version, name, found := strings.Cut(base, "_")
		if !found || version == "" {
			return nil, fmt.Errorf("migration %s must be named NNNN_name", entry.Name())
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if m.Name != name {
			return nil, fmt.Errorf("migration version %s used by %s and %s", version, m.Name, name)
		}
		if direction == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %s_%s needs both up and down files", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	return migrations, nil
}

// Migrations returns the loaded migrations in apply order.
func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// Applied returns the applied versions in ascending order.
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan applied migrations: %w", err)
	}
	return versions, nil
}

// Up applies every pending migration in version order and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	count := 0
	for _, mig := range m.migrations {
		if done[mig.Version] {
			continue
		}
		err := pgx.BeginFunc(ctx, m.db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Up); err != nil {
				return fmt.Errorf("error occurred during SQL migration execution: %w", err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, mig.Version); err != nil {
				return fmt.Errorf("failed to record migration: %w", err)
			}
			return nil
		})
		if err != nil {
			return count, fmt.Errorf("migration %s_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info().Str("version", mig.Version).Str("name", mig.Name).Msg("Migration applied")
		count++
	}

	if count == 0 {
		m.logger.Debug().Msg("Schema is up to date")
	}
	return count, nil
}

// Down reverts the last steps applied migrations, newest first, and returns how many ran.
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	if steps <= 0 {
		return 0, nil
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[string]Migration, len(m.migrations))
	for _, mig := range m.migrations {
		known[mig.Version] = mig
	}

	count := 0
	for i := len(applied) - 1; i >= 0 && count < steps; i-- {
		mig, ok := known[applied[i]]
		if !ok {
			return count, fmt.Errorf("applied migration %s is unknown to this binary", applied[i])
		}
		err := pgx.BeginFunc(ctx, m.db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Down); err != nil {
				return fmt.Errorf("error occurred during SQL rollback execution: %w", err)
			}
			if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version); err != nil {
				return fmt.Errorf("failed to remove migration record: %w", err)
			}
			return nil
		})
		if err != nil {
			return count, fmt.Errorf("migration %s_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info().Str("version", mig.Version).Str("name", mig.Name).Msg("Migration reverted")
		count++
	}

	return count, nil
}
