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

// ICourseRepository defines course persistence
type ICourseRepository interface {
	CreateCourse(ctx context.Context, course *models.Course) (int64, error)
	// EnsureCourse returns the id of (program, code), creating the course when missing.
	EnsureCourse(ctx context.Context, course *models.Course) (id int64, created bool, err error)
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetCoursesByProgram(ctx context.Context, programID int64) ([]*models.Course, error)
	ListCoursesByProgram(ctx context.Context, programID int64, offset uint64, limit int) ([]*models.Course, int64, error)
	// FindCourseIDByCode resolves a code, preferring a course of programID over other programs.
	FindCourseIDByCode(ctx context.Context, programID int64, code string) (int64, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id int64) error
}

// CourseRepository handles course database operations
type CourseRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(database db.DBTX) *CourseRepository {
	return &CourseRepository{db: database, sb: psql}
}

var courseColumns = []string{"id", "program_id", "code", "name", "credits", "description", "created_at"}

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(&c.ID, &c.ProgramID, &c.Code, &c.Name, &c.Credits, &c.Description, &c.CreatedAt)
	return c, err
}

func mapCourseWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "courses_program_code_key"):
		return apperrors.ErrCourseAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrProgramNotFound
	}
	return nil
}

// CreateCourse creates a new course
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) (int64, error) {
	sql, args, err := r.sb.Insert("courses").
		Columns("program_id", "code", "name", "credits", "description").
		Values(course.ProgramID, course.Code, course.Name, course.Credits, course.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return 0, fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt); err != nil {
		if mapped := mapCourseWriteError(err); mapped != nil {
			return 0, mapped
		}
		logger.Error().Err(err).Str("code", course.Code).Msg("Error executing create course query")
		return 0, fmt.Errorf("error creating course: %w", err)
	}
	return course.ID, nil
}

// EnsureCourse inserts the course unless (program_id, code) already exists.
// An existing course keeps its stored name, credits and description.
func (r *CourseRepository) EnsureCourse(ctx context.Context, course *models.Course) (int64, bool, error) {
	sql, args, err := r.sb.Insert("courses").
		Columns("program_id", "code", "name", "credits", "description").
		Values(course.ProgramID, course.Code, course.Name, course.Credits, course.Description).
		Suffix("ON CONFLICT (program_id, code) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build ensure course query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if mapped := mapCourseWriteError(err); mapped != nil {
			return 0, false, mapped
		}
		logger.Error().Err(err).Str("code", course.Code).Msg("Error ensuring course")
		return 0, false, fmt.Errorf("error ensuring course: %w", err)
	}

	sql, args, err = r.sb.Select("id").From("courses").
		Where(squirrel.Eq{"program_id": course.ProgramID, "code": course.Code}).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build course lookup query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("error looking up course %s: %w", course.Code, err)
	}
	return id, false, nil
}

// GetCourseByID retrieves a course by ID
func (r *CourseRepository) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	return course, nil
}

func (r *CourseRepository) queryCourses(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Course, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list courses SQL")
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, nil
}

// GetCoursesByProgram returns every course of a program in id order
func (r *CourseRepository) GetCoursesByProgram(ctx context.Context, programID int64) ([]*models.Course, error) {
	return r.queryCourses(ctx, r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"program_id": programID}).
		OrderBy("id ASC"))
}

// ListCoursesByProgram returns one page of a program's courses ordered by code, plus the total count
func (r *CourseRepository) ListCoursesByProgram(ctx context.Context, programID int64, offset uint64, limit int) ([]*models.Course, int64, error) {
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("courses").Where(squirrel.Eq{"program_id": programID}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Int64("programID", programID).Msg("Error counting courses")
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	courses, err := r.queryCourses(ctx, r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"program_id": programID}).
		OrderBy("code ASC", "id ASC").
		Offset(offset).
		Limit(uint64(limit)))
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// FindCourseIDByCode resolves a course code
func (r *CourseRepository) FindCourseIDByCode(ctx context.Context, programID int64, code string) (int64, error) {
	sql, args, err := r.sb.Select("id").
		From("courses").
		Where(squirrel.Eq{"code": code}).
		OrderByClause("(program_id = ?) DESC", programID).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build find course by code query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("code", code).Msg("Error finding course by code")
		return 0, fmt.Errorf("error finding course by code: %w", err)
	}
	return id, nil
}

// UpdateCourse replaces the editable fields of a course
func (r *CourseRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Update("courses").
		SetMap(map[string]interface{}{
			"code":        course.Code,
			"name":        course.Name,
			"credits":     course.Credits,
			"description": course.Description,
		}).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update course SQL")
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapCourseWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
		return fmt.Errorf("error updating course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// DeleteCourse deletes a course by ID
func (r *CourseRepository) DeleteCourse(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete course SQL")
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
