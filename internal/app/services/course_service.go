package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/helpers"
	"github.com/curriculum/planner/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// CourseService defines course catalog operations
type CourseService interface {
	CreateCourse(ctx context.Context, programID int64, req *dto.CourseRequest) (*dto.CourseResponse, error)
	GetCourseByID(ctx context.Context, id int64) (*dto.CourseResponse, error)
	ListCourses(ctx context.Context, programID int64, page, pageSize int) (*dto.CourseListResponse, error)
	UpdateCourse(ctx context.Context, id int64, req *dto.CourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, id int64) error
}

type courseServiceImpl struct {
	programRepo repositories.IProgramRepository
	courseRepo  repositories.ICourseRepository
	logger      zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(programRepo repositories.IProgramRepository, courseRepo repositories.ICourseRepository, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{programRepo: programRepo, courseRepo: courseRepo, logger: logger}
}

// validateCourseRequest normalizes the code and checks fields that binding tags cannot.
func validateCourseRequest(req *dto.CourseRequest) error {
	req.Code = validation.NormalizeCourseCode(req.Code)
	req.Name = strings.TrimSpace(req.Name)

	if !validation.IsCourseCode(req.Code) {
		return fmt.Errorf("%w: invalid course code %q", apperrors.ErrValidationFailed, req.Code)
	}
	if req.Name == "" {
		return fmt.Errorf("%w: course name cannot be empty", apperrors.ErrValidationFailed)
	}
	if len(req.Name) > validation.CourseNameMaxLength {
		return fmt.Errorf("%w: course name is too long", apperrors.ErrValidationFailed)
	}
	if req.Credits != nil && (*req.Credits < 0 || *req.Credits > validation.MaxCredits) {
		return fmt.Errorf("%w: credits must be between 0 and %d", apperrors.ErrValidationFailed, validation.MaxCredits)
	}
	return nil
}

func (s *courseServiceImpl) CreateCourse(ctx context.Context, programID int64, req *dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := validateCourseRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.programRepo.GetProgramByID(ctx, programID); err != nil {
		return nil, err
	}

	course := &models.Course{
		ProgramID:   programID,
		Code:        req.Code,
		Name:        req.Name,
		Credits:     req.Credits,
		Description: req.Description,
	}
	if _, err := s.courseRepo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Int64("programID", programID).Msg("Course created")
	return dto.NewCourseResponse(course), nil
}

func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*dto.CourseResponse, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponse(course), nil
}

// ListCourses returns one page of a program's courses ordered by code
func (s *courseServiceImpl) ListCourses(ctx context.Context, programID int64, page, pageSize int) (*dto.CourseListResponse, error) {
	if _, err := s.programRepo.GetProgramByID(ctx, programID); err != nil {
		return nil, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	courses, total, err := s.courseRepo.ListCoursesByProgram(ctx, programID, offset, limit)
	if err != nil {
		return nil, err
	}

	return &dto.CourseListResponse{
		Items:      dto.NewCourseResponses(courses),
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// UpdateCourse replaces the editable fields of a course; its program never changes
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, id int64, req *dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := validateCourseRequest(req); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetCourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Code = req.Code
	course.Name = req.Name
	course.Credits = req.Credits
	course.Description = req.Description

	if err := s.courseRepo.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("courseID", id).Msg("Course deleted")
	return nil
}
