package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/db"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/dberrors"
	"github.com/curriculum/planner/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// IProgramRepository defines program persistence
type IProgramRepository interface {
	CreateProgram(ctx context.Context, program *models.Program) (int64, error)
	// EnsureProgram returns the id of the named program, creating it when missing.
	EnsureProgram(ctx context.Context, name string) (id int64, created bool, err error)
	GetProgramByID(ctx context.Context, id int64) (*models.Program, error)
	GetAllPrograms(ctx context.Context) ([]*models.Program, error)
	DeleteProgram(ctx context.Context, id int64) error
}

// ProgramRepository handles program database operations
type ProgramRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(database db.DBTX) *ProgramRepository {
	return &ProgramRepository{db: database, sb: psql}
}

// CreateProgram creates a new program
func (r *ProgramRepository) CreateProgram(ctx context.Context, program *models.Program) (int64, error) {
	sql, args, err := r.sb.Insert("programs").
		Columns("name").
		Values(program.Name).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create program SQL")
		return 0, fmt.Errorf("failed to build create program query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&program.ID, &program.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "programs_name_key") {
			return 0, apperrors.ErrProgramAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create program query")
		return 0, fmt.Errorf("error creating program: %w", err)
	}

	return program.ID, nil
}

// EnsureProgram gets or creates a program by name without failing on conflicts.
func (r *ProgramRepository) EnsureProgram(ctx context.Context, name string) (int64, bool, error) {
	sql, args, err := r.sb.Insert("programs").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build ensure program query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Str("program", name).Msg("Error ensuring program")
		return 0, false, fmt.Errorf("error ensuring program: %w", err)
	}

	sql, args, err = r.sb.Select("id").From("programs").Where(squirrel.Eq{"name": name}).ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build program lookup query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("error looking up program %q: %w", name, err)
	}
	return id, false, nil
}

// GetProgramByID retrieves a program by ID
func (r *ProgramRepository) GetProgramByID(ctx context.Context, id int64) (*models.Program, error) {
	sql, args, err := r.sb.Select("id", "name", "created_at").
		From("programs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get program SQL")
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}

	program := &models.Program{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&program.ID, &program.Name, &program.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProgramNotFound
		}
		logger.Error().Err(err).Int64("programID", id).Msg("Error scanning program row")
		return nil, fmt.Errorf("error getting program by ID: %w", err)
	}
	return program, nil
}

// GetAllPrograms retrieves all programs ordered by name
func (r *ProgramRepository) GetAllPrograms(ctx context.Context) ([]*models.Program, error) {
	sql, args, err := r.sb.Select("id", "name", "created_at").
		From("programs").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get all programs SQL")
		return nil, fmt.Errorf("failed to build get all programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all programs query")
		return nil, fmt.Errorf("error querying programs: %w", err)
	}
	defer rows.Close()

	programs := []*models.Program{}
	for rows.Next() {
		program := &models.Program{}
		if err := rows.Scan(&program.ID, &program.Name, &program.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning program row: %w", err)
		}
		programs = append(programs, program)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating program rows: %w", err)
	}

	return programs, nil
}

// DeleteProgram deletes a program; courses and everything hanging off them cascade.
func (r *ProgramRepository) DeleteProgram(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("programs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete program SQL")
		return fmt.Errorf("failed to build delete program query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("programID", id).Msg("Error executing delete program query")
		return fmt.Errorf("error deleting program: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProgramNotFound
	}
	return nil
}
