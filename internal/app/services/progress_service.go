package services

import (
	"context"
	"fmt"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"

	appAuth "github.com/curriculum/planner/internal/app/auth"
)

// ProgressService tracks a student's plan and derives which courses they may take next
type ProgressService interface {
	ListProgress(ctx context.Context, userID int64) ([]*dto.ProgressResponse, error)
	GetUserProgress(ctx context.Context, actor *models.User, targetUserID int64) ([]*dto.ProgressResponse, error)
	SetProgress(ctx context.Context, userID, courseID int64, status models.ProgressStatus) (*dto.ProgressResponse, error)
	DeleteProgress(ctx context.Context, userID, courseID int64) error
	EligibleCourses(ctx context.Context, userID, programID int64) ([]*dto.CourseResponse, error)
}

type progressServiceImpl struct {
	programRepo  repositories.IProgramRepository
	courseRepo   repositories.ICourseRepository
	prereqRepo   repositories.IPrerequisiteRepository
	progressRepo repositories.IProgressRepository
	authz        *appAuth.AuthorizationService
}

// NewProgressService creates a new ProgressService
func NewProgressService(
	programRepo repositories.IProgramRepository,
	courseRepo repositories.ICourseRepository,
	prereqRepo repositories.IPrerequisiteRepository,
	progressRepo repositories.IProgressRepository,
	authz *appAuth.AuthorizationService,
) ProgressService {
	return &progressServiceImpl{
		programRepo:  programRepo,
		courseRepo:   courseRepo,
		prereqRepo:   prereqRepo,
		progressRepo: progressRepo,
		authz:        authz,
	}
}

func (s *progressServiceImpl) ListProgress(ctx context.Context, userID int64) ([]*dto.ProgressResponse, error) {
	items, err := s.progressRepo.GetProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewProgressResponses(items), nil
}

// GetUserProgress lists another user's plan when the actor may see it
func (s *progressServiceImpl) GetUserProgress(ctx context.Context, actor *models.User, targetUserID int64) ([]*dto.ProgressResponse, error) {
	if err := s.authz.CanViewProgress(ctx, actor, targetUserID); err != nil {
		return nil, err
	}
	return s.ListProgress(ctx, targetUserID)
}

func (s *progressServiceImpl) SetProgress(ctx context.Context, userID, courseID int64, status models.ProgressStatus) (*dto.ProgressResponse, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be planned, in_progress or completed", apperrors.ErrValidationFailed)
	}

	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	progress := &models.StudentProgress{UserID: userID, CourseID: courseID, Status: status}
	if err := s.progressRepo.UpsertProgress(ctx, progress); err != nil {
		return nil, err
	}

	ref := course.Ref()
	progress.Course = &ref
	return dto.NewProgressResponse(progress), nil
}

func (s *progressServiceImpl) DeleteProgress(ctx context.Context, userID, courseID int64) error {
	return s.progressRepo.DeleteProgress(ctx, userID, courseID)
}

// EligibleCourses lists the program's courses the user has not completed and whose
// requirement is met by the completed ones.
func (s *progressServiceImpl) EligibleCourses(ctx context.Context, userID, programID int64) ([]*dto.CourseResponse, error) {
	if _, err := s.programRepo.GetProgramByID(ctx, programID); err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.GetCoursesByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	simple, err := s.prereqRepo.GetPrerequisitesByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	groups, err := s.prereqRepo.GetGroupsByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.progressRepo.GetCompletedCourseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed := make(map[int64]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	requirements := make(map[int64]*models.Requirement, len(courses))
	for _, c := range courses {
		requirements[c.ID] = &models.Requirement{CourseID: c.ID}
	}
	for _, p := range simple {
		if r, ok := requirements[p.CourseID]; ok {
			r.Simple = append(r.Simple, p.Prereq)
		}
	}
	for _, g := range groups {
		if r, ok := requirements[g.CourseID]; ok {
			r.Groups = append(r.Groups, g)
		}
	}

	eligible := make([]*models.Course, 0)
	for _, c := range courses {
		if completed[c.ID] {
			continue
		}
		if requirements[c.ID].Satisfied(completed) {
			eligible = append(eligible, c)
		}
	}
	return dto.NewCourseResponses(eligible), nil
}
