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
	"github.com/jackc/pgx/v5"
)

// IPrerequisiteRepository defines persistence of simple prerequisites and AND/OR groups
type IPrerequisiteRepository interface {
	AddPrerequisite(ctx context.Context, courseID, prereqCourseID int64) (int64, error)
	RemovePrerequisite(ctx context.Context, courseID, prereqCourseID int64) error
	// CreateGroup inserts a group and its members atomically.
	CreateGroup(ctx context.Context, courseID int64, kind models.GroupKind, memberCourseIDs []int64) (int64, error)
	DeleteGroup(ctx context.Context, groupID int64) error
	DeleteGroupsByCourse(ctx context.Context, courseID int64) error
	GetPrerequisitesByCourse(ctx context.Context, courseID int64) ([]models.Prerequisite, error)
	GetGroupsByCourse(ctx context.Context, courseID int64) ([]*models.PrerequisiteGroup, error)
	GetPrerequisitesByProgram(ctx context.Context, programID int64) ([]models.Prerequisite, error)
	GetGroupsByProgram(ctx context.Context, programID int64) ([]*models.PrerequisiteGroup, error)
}

// PrerequisiteRepository handles prerequisite database operations
type PrerequisiteRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewPrerequisiteRepository creates a new PrerequisiteRepository
func NewPrerequisiteRepository(database db.DBTX) *PrerequisiteRepository {
	return &PrerequisiteRepository{db: database, sb: psql}
}

// AddPrerequisite records that courseID requires prereqCourseID
func (r *PrerequisiteRepository) AddPrerequisite(ctx context.Context, courseID, prereqCourseID int64) (int64, error) {
	sql, args, err := r.sb.Insert("prerequisites").
		Columns("course_id", "prereq_course_id").
		Values(courseID, prereqCourseID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building add prerequisite SQL")
		return 0, fmt.Errorf("failed to build add prerequisite query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "prerequisites_course_prereq_key"):
			return 0, apperrors.ErrPrerequisiteExists
		case dberrors.IsCheckViolation(err, "prerequisites_no_self_reference"):
			return 0, apperrors.ErrSelfPrerequisite
		case dberrors.IsForeignKeyViolation(err):
			return 0, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", courseID).Int64("prereqCourseID", prereqCourseID).Msg("Error adding prerequisite")
		return 0, fmt.Errorf("error adding prerequisite: %w", err)
	}
	return id, nil
}

// RemovePrerequisite deletes a simple prerequisite link
func (r *PrerequisiteRepository) RemovePrerequisite(ctx context.Context, courseID, prereqCourseID int64) error {
	sql, args, err := r.sb.Delete("prerequisites").
		Where(squirrel.Eq{"course_id": courseID, "prereq_course_id": prereqCourseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove prerequisite query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error removing prerequisite")
		return fmt.Errorf("error removing prerequisite: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPrerequisiteNotFound
	}
	return nil
}

// CreateGroup inserts the group row and one member row per distinct course in a single transaction
// (a savepoint when the repository already runs inside one).
func (r *PrerequisiteRepository) CreateGroup(ctx context.Context, courseID int64, kind models.GroupKind, memberCourseIDs []int64) (int64, error) {
	groupSQL, groupArgs, err := r.sb.Insert("prerequisite_groups").
		Columns("course_id", "kind").
		Values(courseID, string(kind)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create group query: %w", err)
	}

	var groupID int64
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, groupSQL, groupArgs...).Scan(&groupID); err != nil {
			return err
		}
		if len(memberCourseIDs) == 0 {
			return nil
		}

		insert := r.sb.Insert("prerequisite_group_members").Columns("group_id", "prereq_course_id")
		for _, memberID := range memberCourseIDs {
			insert = insert.Values(groupID, memberID)
		}
		memberSQL, memberArgs, err := insert.Suffix("ON CONFLICT (group_id, prereq_course_id) DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build group members query: %w", err)
		}
		_, err = tx.Exec(ctx, memberSQL, memberArgs...)
		return err
	})
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error creating prerequisite group")
		return 0, fmt.Errorf("error creating prerequisite group: %w", err)
	}
	return groupID, nil
}

// DeleteGroup deletes a group; members cascade
func (r *PrerequisiteRepository) DeleteGroup(ctx context.Context, groupID int64) error {
	sql, args, err := r.sb.Delete("prerequisite_groups").Where(squirrel.Eq{"id": groupID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete group query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("groupID", groupID).Msg("Error deleting prerequisite group")
		return fmt.Errorf("error deleting prerequisite group: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrGroupNotFound
	}
	return nil
}

// DeleteGroupsByCourse removes every group of a course
func (r *PrerequisiteRepository) DeleteGroupsByCourse(ctx context.Context, courseID int64) error {
	sql, args, err := r.sb.Delete("prerequisite_groups").Where(squirrel.Eq{"course_id": courseID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course groups query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error deleting course prerequisite groups")
		return fmt.Errorf("error deleting course prerequisite groups: %w", err)
	}
	return nil
}

func (r *PrerequisiteRepository) simpleQuery(where squirrel.Sqlizer) squirrel.SelectBuilder {
	return r.sb.Select("p.id", "p.course_id", "pc.id", "pc.code", "pc.name").
		From("prerequisites p").
		Join("courses c ON c.id = p.course_id").
		Join("courses pc ON pc.id = p.prereq_course_id").
		Where(where).
		OrderBy("p.id ASC")
}

func (r *PrerequisiteRepository) getPrerequisites(ctx context.Context, query squirrel.SelectBuilder) ([]models.Prerequisite, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list prerequisites SQL")
		return nil, fmt.Errorf("failed to build list prerequisites query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list prerequisites query")
		return nil, fmt.Errorf("error querying prerequisites: %w", err)
	}
	defer rows.Close()

	prereqs := []models.Prerequisite{}
	for rows.Next() {
		var p models.Prerequisite
		if err := rows.Scan(&p.ID, &p.CourseID, &p.Prereq.ID, &p.Prereq.Code, &p.Prereq.Name); err != nil {
			return nil, fmt.Errorf("error scanning prerequisite row: %w", err)
		}
		prereqs = append(prereqs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prerequisite rows: %w", err)
	}
	return prereqs, nil
}

// GetPrerequisitesByCourse lists the simple prerequisites of one course
func (r *PrerequisiteRepository) GetPrerequisitesByCourse(ctx context.Context, courseID int64) ([]models.Prerequisite, error) {
	return r.getPrerequisites(ctx, r.simpleQuery(squirrel.Eq{"p.course_id": courseID}))
}

// GetPrerequisitesByProgram lists the simple prerequisites of every course in a program.
// Prerequisite courses may belong to other programs.
func (r *PrerequisiteRepository) GetPrerequisitesByProgram(ctx context.Context, programID int64) ([]models.Prerequisite, error) {
	return r.getPrerequisites(ctx, r.simpleQuery(squirrel.Eq{"c.program_id": programID}))
}

func (r *PrerequisiteRepository) groupQuery(where squirrel.Sqlizer) squirrel.SelectBuilder {
	return r.sb.Select("g.id", "g.course_id", "g.kind", "pc.id", "pc.code", "pc.name").
		From("prerequisite_groups g").
		Join("courses c ON c.id = g.course_id").
		LeftJoin("prerequisite_group_members m ON m.group_id = g.id").
		LeftJoin("courses pc ON pc.id = m.prereq_course_id").
		Where(where).
		OrderBy("g.id ASC", "m.id ASC")
}

func (r *PrerequisiteRepository) getGroups(ctx context.Context, query squirrel.SelectBuilder) ([]*models.PrerequisiteGroup, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list groups SQL")
		return nil, fmt.Errorf("failed to build list groups query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list groups query")
		return nil, fmt.Errorf("error querying prerequisite groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.PrerequisiteGroup{}
	var current *models.PrerequisiteGroup
	for rows.Next() {
		var (
			groupID, courseID int64
			kind              models.GroupKind
			memberID          *int64
			memberCode        *string
			memberName        *string
		)
		if err := rows.Scan(&groupID, &courseID, &kind, &memberID, &memberCode, &memberName); err != nil {
			return nil, fmt.Errorf("error scanning prerequisite group row: %w", err)
		}

		if current == nil || current.ID != groupID {
			current = &models.PrerequisiteGroup{ID: groupID, CourseID: courseID, Kind: kind, Members: []models.CourseRef{}}
			groups = append(groups, current)
		}
		// Groups without members come back with NULLs from the left join.
		if memberID != nil {
			current.Members = append(current.Members, models.CourseRef{ID: *memberID, Code: *memberCode, Name: *memberName})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prerequisite group rows: %w", err)
	}
	return groups, nil
}

// GetGroupsByCourse lists the groups of one course with their members
func (r *PrerequisiteRepository) GetGroupsByCourse(ctx context.Context, courseID int64) ([]*models.PrerequisiteGroup, error) {
	return r.getGroups(ctx, r.groupQuery(squirrel.Eq{"g.course_id": courseID}))
}

// GetGroupsByProgram lists the groups of every course in a program with their members
func (r *PrerequisiteRepository) GetGroupsByProgram(ctx context.Context, programID int64) ([]*models.PrerequisiteGroup, error) {
	return r.getGroups(ctx, r.groupQuery(squirrel.Eq{"c.program_id": programID}))
}
