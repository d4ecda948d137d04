package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/db"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/dberrors"
	"github.com/curriculum/planner/internal/pkg/logger"
)

// IProgressRepository defines student progress persistence
type IProgressRepository interface {
	UpsertProgress(ctx context.Context, progress *models.StudentProgress) error
	GetProgressByUser(ctx context.Context, userID int64) ([]*models.StudentProgress, error)
	DeleteProgress(ctx context.Context, userID, courseID int64) error
	GetCompletedCourseIDs(ctx context.Context, userID int64) ([]int64, error)
}

// ProgressRepository handles student progress database operations
type ProgressRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(database db.DBTX) *ProgressRepository {
	return &ProgressRepository{db: database, sb: psql}
}

// UpsertProgress inserts or updates the (user, course) record and fills ID and UpdatedAt
func (r *ProgressRepository) UpsertProgress(ctx context.Context, progress *models.StudentProgress) error {
	sql, args, err := r.sb.Insert("student_progress").
		Columns("user_id", "course_id", "status").
		Values(progress.UserID, progress.CourseID, string(progress.Status)).
		Suffix("ON CONFLICT (user_id, course_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW() RETURNING id, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert progress SQL")
		return fmt.Errorf("failed to build upsert progress query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&progress.ID, &progress.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("userID", progress.UserID).Int64("courseID", progress.CourseID).Msg("Error upserting progress")
		return fmt.Errorf("error upserting progress: %w", err)
	}
	return nil
}

// GetProgressByUser lists a user's records joined with course code and name
func (r *ProgressRepository) GetProgressByUser(ctx context.Context, userID int64) ([]*models.StudentProgress, error) {
	sql, args, err := r.sb.Select("sp.id", "sp.user_id", "sp.course_id", "sp.status", "sp.updated_at", "c.code", "c.name").
		From("student_progress sp").
		Join("courses c ON c.id = sp.course_id").
		Where(squirrel.Eq{"sp.user_id": userID}).
		OrderBy("c.code ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list progress SQL")
		return nil, fmt.Errorf("failed to build list progress query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing list progress query")
		return nil, fmt.Errorf("error querying progress: %w", err)
	}
	defer rows.Close()

	items := []*models.StudentProgress{}
	for rows.Next() {
		p := &models.StudentProgress{Course: &models.CourseRef{}}
		if err := rows.Scan(&p.ID, &p.UserID, &p.CourseID, &p.Status, &p.UpdatedAt, &p.Course.Code, &p.Course.Name); err != nil {
			return nil, fmt.Errorf("error scanning progress row: %w", err)
		}
		p.Course.ID = p.CourseID
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress rows: %w", err)
	}
	return items, nil
}

// DeleteProgress removes a user's record for a course
func (r *ProgressRepository) DeleteProgress(ctx context.Context, userID, courseID int64) error {
	sql, args, err := r.sb.Delete("student_progress").
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete progress query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error deleting progress")
		return fmt.Errorf("error deleting progress: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProgressNotFound
	}
	return nil
}

// GetCompletedCourseIDs returns the ids of the user's completed courses
func (r *ProgressRepository) GetCompletedCourseIDs(ctx context.Context, userID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("course_id").
		From("student_progress").
		Where(squirrel.Eq{"user_id": userID, "status": string(models.ProgressCompleted)}).
		OrderBy("course_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build completed courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error querying completed courses")
		return nil, fmt.Errorf("error querying completed courses: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning completed course row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed course rows: %w", err)
	}
	return ids, nil
}
