// Package importer loads programs, courses and prerequisite groups from catalog spreadsheets.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/db"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/prereq"
	"github.com/curriculum/planner/internal/pkg/validation"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Store is the write surface the importer needs.
type Store interface {
	EnsureProgram(ctx context.Context, name string) (int64, bool, error)
	EnsureCourse(ctx context.Context, course *models.Course) (int64, bool, error)
	FindCourseIDByCode(ctx context.Context, programID int64, code string) (int64, error)
	CreateGroup(ctx context.Context, courseID int64, kind models.GroupKind, memberCourseIDs []int64) (int64, error)
	DeleteGroupsByCourse(ctx context.Context, courseID int64) error
}

type repoStore struct {
	repositories.IProgramRepository
	repositories.ICourseRepository
	repositories.IPrerequisiteRepository
}

// NewStore combines the catalog repositories into a Store.
func NewStore(programs repositories.IProgramRepository, courses repositories.ICourseRepository, prereqs repositories.IPrerequisiteRepository) Store {
	return repoStore{programs, courses, prereqs}
}

// RowError reports a problem with one source row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Result summarizes an import.
type Result struct {
	Rows            int        `json:"rows"`
	ProgramsCreated int        `json:"programsCreated"`
	CoursesCreated  int        `json:"coursesCreated"`
	Groups          int        `json:"groups"`
	Members         int        `json:"members"`
	Skipped         int        `json:"skipped"`
	Errors          []RowError `json:"errors"`
}

func (r *Result) fail(row int, format string, args ...any) {
	r.Errors = append(r.Errors, RowError{Row: row, Message: fmt.Sprintf(format, args...)})
}

// Importer applies catalog records to a Store.
type Importer struct {
	store  Store
	logger zerolog.Logger
}

// New creates an Importer writing to store.
func New(store Store, logger zerolog.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

type pendingCourse struct {
	record    Record
	programID int64
	courseID  int64
	groups    []prereq.Group
}

// Apply imports records in two passes. The first creates missing programs and courses and
// leaves existing ones untouched. The second replaces the prerequisite groups of every row
// that names prerequisites, resolving codes within the same program before any other.
// Bad rows and unknown codes are reported in the Result; only store failures abort.
func (im *Importer) Apply(ctx context.Context, records []Record) (*Result, error) {
	result := &Result{Rows: len(records), Errors: []RowError{}}
	programIDs := make(map[string]int64)
	pending := make([]pendingCourse, 0, len(records))

	for _, rec := range records {
		course, groups, err := parseRecord(rec)
		if err != nil {
			result.Skipped++
			result.fail(rec.Row, "%v", err)
			continue
		}

		programID, ok := programIDs[rec.Program]
		if !ok {
			id, created, err := im.store.EnsureProgram(ctx, rec.Program)
			if err != nil {
				return nil, fmt.Errorf("row %d: program %q: %w", rec.Row, rec.Program, err)
			}
			if created {
				result.ProgramsCreated++
			}
			programID = id
			programIDs[rec.Program] = id
		}

		course.ProgramID = programID
		courseID, created, err := im.store.EnsureCourse(ctx, course)
		if err != nil {
			return nil, fmt.Errorf("row %d: course %q: %w", rec.Row, course.Code, err)
		}
		if created {
			result.CoursesCreated++
		}

		pending = append(pending, pendingCourse{record: rec, programID: programID, courseID: courseID, groups: groups})
	}

	for _, p := range pending {
		if len(p.groups) == 0 {
			continue
		}
		if err := im.store.DeleteGroupsByCourse(ctx, p.courseID); err != nil {
			return nil, fmt.Errorf("row %d: clearing prerequisite groups: %w", p.record.Row, err)
		}

		for _, g := range p.groups {
			members := make([]int64, 0, len(g.Codes))
			for _, code := range g.Codes {
				id, err := im.store.FindCourseIDByCode(ctx, p.programID, code)
				if errors.Is(err, apperrors.ErrResourceNotFound) {
					result.fail(p.record.Row, "unknown prerequisite course %q", code)
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("row %d: resolving %q: %w", p.record.Row, code, err)
				}
				if id == p.courseID {
					result.fail(p.record.Row, "course %q lists itself as a prerequisite", code)
					continue
				}
				members = append(members, id)
			}
			if len(members) == 0 {
				continue
			}

			if _, err := im.store.CreateGroup(ctx, p.courseID, g.Kind, members); err != nil {
				return nil, fmt.Errorf("row %d: creating prerequisite group: %w", p.record.Row, err)
			}
			result.Groups++
			result.Members += len(members)
		}
	}

	im.logger.Info().
		Int("rows", result.Rows).
		Int("programsCreated", result.ProgramsCreated).
		Int("coursesCreated", result.CoursesCreated).
		Int("groups", result.Groups).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("Catalog import applied")
	return result, nil
}

func parseRecord(rec Record) (*models.Course, []prereq.Group, error) {
	if rec.Program == "" {
		return nil, nil, errors.New("program is required")
	}
	code := validation.NormalizeCourseCode(rec.CourseCode)
	if !validation.IsCourseCode(code) {
		return nil, nil, fmt.Errorf("invalid course code %q", rec.CourseCode)
	}
	if rec.CourseName == "" {
		return nil, nil, errors.New("course name is required")
	}

	course := &models.Course{Code: code, Name: rec.CourseName}
	if rec.Credits != "" {
		credits, err := strconv.Atoi(rec.Credits)
		if err != nil || credits < 0 || credits > validation.MaxCredits {
			return nil, nil, fmt.Errorf("invalid credits %q", rec.Credits)
		}
		course.Credits = &credits
	}
	if rec.Description != "" {
		description := rec.Description
		course.Description = &description
	}

	groups, err := prereq.Parse(rec.Prerequisites)
	if err != nil {
		return nil, nil, err
	}
	return course, groups, nil
}

// Validate checks every record without touching a store and reports the rows Apply would skip.
func Validate(records []Record) []RowError {
	errs := []RowError{}
	for _, rec := range records {
		if _, _, err := parseRecord(rec); err != nil {
			errs = append(errs, RowError{Row: rec.Row, Message: err.Error()})
		}
	}
	return errs
}

// TxImporter applies each batch of records in its own database transaction.
type TxImporter struct {
	DB     *db.PostgresDB
	Logger zerolog.Logger
}

// Apply runs ImportTx; any store failure rolls the whole batch back.
func (t TxImporter) Apply(ctx context.Context, records []Record) (*Result, error) {
	return ImportTx(ctx, t.DB, records, t.Logger)
}

// ImportTx applies records inside one database transaction.
func ImportTx(ctx context.Context, database *db.PostgresDB, records []Record, logger zerolog.Logger) (*Result, error) {
	var result *Result
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repos := repositories.NewRepositories(tx)
		store := NewStore(repos.ProgramRepository, repos.CourseRepository, repos.PrerequisiteRepository)

		var err error
		result, err = New(store, logger).Apply(ctx, records)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
