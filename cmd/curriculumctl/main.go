// Command curriculumctl runs one-off maintenance tasks: migrations, seeding and catalog import.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/curriculum/planner/internal/app/migrations"
	"github.com/curriculum/planner/internal/bootstrap"
	"github.com/curriculum/planner/internal/config"
	"github.com/curriculum/planner/internal/db"
	"github.com/curriculum/planner/internal/importer"
	"github.com/curriculum/planner/internal/pkg/logger"
	"github.com/curriculum/planner/internal/seed"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("curriculumctl failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "curriculumctl",
		Usage: "manage the curriculum planner database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply or revert schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "apply every pending migration",
						Action: migrateUp,
					},
					{
						Name:  "down",
						Usage: "revert the most recent migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to revert"},
						},
						Action: migrateDown,
					},
					{
						Name:   "status",
						Usage:  "list applied and pending migrations",
						Action: migrateStatus,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "insert the demo program and the configured admin user",
				Action: runSeed,
			},
			{
				Name:  "import",
				Usage: "load programs, courses and prerequisites from a CSV or XLSX catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "catalog file (.csv, .xlsx)"},
					&cli.StringFlag{Name: "sheet", Usage: "worksheet to read from an XLSX file (default: first)"},
					&cli.BoolFlag{Name: "dry-run", Usage: "parse and validate the file without touching the database"},
				},
				Action: runImport,
			},
		},
	}
}

// env is what every command needs: configuration, a logger and a database handle.
type env struct {
	cfg      *config.Config
	logger   zerolog.Logger
	database *db.PostgresDB
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"), ".env")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	lgr := bootstrap.SetupLogger(cfg)

	database, err := bootstrap.ConnectDatabase(c.Context, cfg, lgr)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: lgr, database: database}, nil
}

func withMigrator(c *cli.Context, fn func(ctx context.Context, m *migrations.Migrator, lgr zerolog.Logger) error) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.database.Close()

	m, err := migrations.NewMigrator(e.database.Pool, e.logger)
	if err != nil {
		return err
	}
	return fn(c.Context, m, e.logger)
}

func migrateUp(c *cli.Context) error {
	return withMigrator(c, func(ctx context.Context, m *migrations.Migrator, lgr zerolog.Logger) error {
		n, err := m.Up(ctx)
		if err != nil {
			return err
		}
		lgr.Info().Int("applied", n).Msg("Migrations applied")
		return nil
	})
}

func migrateDown(c *cli.Context) error {
	steps := c.Int("steps")
	if steps < 1 {
		return errors.New("--steps must be at least 1")
	}
	return withMigrator(c, func(ctx context.Context, m *migrations.Migrator, lgr zerolog.Logger) error {
		n, err := m.Down(ctx, steps)
		if err != nil {
			return err
		}
		lgr.Info().Int("reverted", n).Msg("Migrations reverted")
		return nil
	})
}

func migrateStatus(c *cli.Context) error {
	return withMigrator(c, func(ctx context.Context, m *migrations.Migrator, _ zerolog.Logger) error {
		applied, err := m.Applied(ctx)
		if err != nil {
			return err
		}
		done := make(map[string]bool, len(applied))
		for _, v := range applied {
			done[v] = true
		}
		for _, mig := range m.Migrations() {
			state := "pending"
			if done[mig.Version] {
				state = "applied"
			}
			fmt.Fprintf(c.App.Writer, "%s_%s\t%s\n", mig.Version, mig.Name, state)
		}
		return nil
	})
}

func runSeed(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.database.Close()

	_, err = seed.CreateDefaultData(c.Context, e.database, e.cfg, e.logger)
	return err
}

func runImport(c *cli.Context) error {
	records, err := importer.ReadFile(c.String("file"), c.String("sheet"))
	if err != nil {
		return err
	}

	if c.Bool("dry-run") {
		fmt.Fprintf(c.App.Writer, "%d rows read from %s\n", len(records), c.String("file"))
		for _, rowErr := range importer.Validate(records) {
			fmt.Fprintln(c.App.ErrWriter, rowErr.Error())
		}
		return nil
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.database.Close()

	result, err := importer.ImportTx(c.Context, e.database, records, e.logger)
	if err != nil {
		return fmt.Errorf("import rolled back: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "rows=%d programs=%d courses=%d groups=%d members=%d skipped=%d\n",
		result.Rows, result.ProgramsCreated, result.CoursesCreated, result.Groups, result.Members, result.Skipped)
	for _, rowErr := range result.Errors {
		fmt.Fprintln(c.App.ErrWriter, rowErr.Error())
	}
	return nil
}
