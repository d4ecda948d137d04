package services

import (
	"context"
	"fmt"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
)

// PrerequisiteService manages simple prerequisites and AND/OR groups
type PrerequisiteService interface {
	GetRequirements(ctx context.Context, courseID int64) (*dto.RequirementResponse, error)
	AddPrerequisite(ctx context.Context, courseID, prereqCourseID int64) (*dto.CreatedResponse, error)
	RemovePrerequisite(ctx context.Context, courseID, prereqCourseID int64) error
	CreateGroup(ctx context.Context, courseID int64, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	DeleteGroup(ctx context.Context, groupID int64) error
}

type prerequisiteServiceImpl struct {
	courseRepo repositories.ICourseRepository
	prereqRepo repositories.IPrerequisiteRepository
}

// NewPrerequisiteService creates a new PrerequisiteService
func NewPrerequisiteService(courseRepo repositories.ICourseRepository, prereqRepo repositories.IPrerequisiteRepository) PrerequisiteService {
	return &prerequisiteServiceImpl{courseRepo: courseRepo, prereqRepo: prereqRepo}
}

// LoadRequirement assembles the full requirement of a course.
func LoadRequirement(ctx context.Context, prereqRepo repositories.IPrerequisiteRepository, courseID int64) (*models.Requirement, error) {
	simple, err := prereqRepo.GetPrerequisitesByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	groups, err := prereqRepo.GetGroupsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	req := &models.Requirement{CourseID: courseID, Simple: make([]models.CourseRef, 0, len(simple)), Groups: groups}
	for _, p := range simple {
		req.Simple = append(req.Simple, p.Prereq)
	}
	return req, nil
}

func (s *prerequisiteServiceImpl) GetRequirements(ctx context.Context, courseID int64) (*dto.RequirementResponse, error) {
	if _, err := s.courseRepo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	req, err := LoadRequirement(ctx, s.prereqRepo, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewRequirementResponse(req), nil
}

func (s *prerequisiteServiceImpl) AddPrerequisite(ctx context.Context, courseID, prereqCourseID int64) (*dto.CreatedResponse, error) {
	if courseID == prereqCourseID {
		return nil, apperrors.ErrSelfPrerequisite
	}
	if _, err := s.courseRepo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.GetCourseByID(ctx, prereqCourseID); err != nil {
		return nil, err
	}

	id, err := s.prereqRepo.AddPrerequisite(ctx, courseID, prereqCourseID)
	if err != nil {
		return nil, err
	}
	return &dto.CreatedResponse{ID: id}, nil
}

func (s *prerequisiteServiceImpl) RemovePrerequisite(ctx context.Context, courseID, prereqCourseID int64) error {
	return s.prereqRepo.RemovePrerequisite(ctx, courseID, prereqCourseID)
}

// CreateGroup stores a group and its members in one transaction
func (s *prerequisiteServiceImpl) CreateGroup(ctx context.Context, courseID int64, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	kind, err := models.ParseGroupKind(req.Kind)
	if err != nil {
		return nil, apperrors.ErrInvalidGroupKind
	}
	if len(req.MemberCourseIDs) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one member course", apperrors.ErrValidationFailed)
	}
	for _, id := range req.MemberCourseIDs {
		if id == courseID {
			return nil, apperrors.ErrSelfPrerequisite
		}
	}

	if _, err := s.courseRepo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	groupID, err := s.prereqRepo.CreateGroup(ctx, courseID, kind, req.MemberCourseIDs)
	if err != nil {
		return nil, err
	}

	groups, err := s.prereqRepo.GetGroupsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.ID == groupID {
			resp := dto.NewGroupResponse(g)
			return &resp, nil
		}
	}
	return nil, apperrors.ErrGroupNotFound
}

func (s *prerequisiteServiceImpl) DeleteGroup(ctx context.Context, groupID int64) error {
	return s.prereqRepo.DeleteGroup(ctx, groupID)
}
