package services

import (
	"context"
	"testing"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestProgramService(t *testing.T) {
	s, _ := newTestServices(t)
	ctx := context.Background()

	created, err := s.ProgramService.CreateProgram(ctx, &dto.CreateProgramRequest{Name: "  BS Biology "})
	require.NoError(t, err)
	assert.Equal(t, "BS Biology", created.Name)

	_, err = s.ProgramService.CreateProgram(ctx, &dto.CreateProgramRequest{Name: "BS Biology"})
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	_, err = s.ProgramService.CreateProgram(ctx, &dto.CreateProgramRequest{Name: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = s.ProgramService.CreateProgram(ctx, &dto.CreateProgramRequest{Name: "BA Arts"})
	require.NoError(t, err)

	all, err := s.ProgramService.GetAllPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "BA Arts", all[0].Name)

	require.NoError(t, s.ProgramService.DeleteProgram(ctx, created.ID))
	_, err = s.ProgramService.GetProgramByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCourseService_CreateAndUpdate(t *testing.T) {
	s, store := newTestServices(t)
	ctx := context.Background()
	programID, _ := catalogFixture(t, store, "BS CS")

	course, err := s.CourseService.CreateCourse(ctx, programID, &dto.CourseRequest{Code: " cs101 ", Name: "Intro", Credits: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)
	assert.Equal(t, programID, course.ProgramID)

	_, err = s.CourseService.CreateCourse(ctx, programID, &dto.CourseRequest{Code: "CS101", Name: "Again"})
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	_, err = s.CourseService.CreateCourse(ctx, programID+100, &dto.CourseRequest{Code: "CS102", Name: "Orphan"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = s.CourseService.CreateCourse(ctx, programID, &dto.CourseRequest{Code: "CS 103", Name: "Bad"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = s.CourseService.CreateCourse(ctx, programID, &dto.CourseRequest{Code: "CS103", Name: "Heavy", Credits: intPtr(99)})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	updated, err := s.CourseService.UpdateCourse(ctx, course.ID, &dto.CourseRequest{Code: "CS110", Name: "Intro to CS"})
	require.NoError(t, err)
	assert.Equal(t, "CS110", updated.Code)
	assert.Nil(t, updated.Credits)

	fetched, err := s.CourseService.GetCourseByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro to CS", fetched.Name)

	require.NoError(t, s.CourseService.DeleteCourse(ctx, course.ID))
	assert.ErrorIs(t, s.CourseService.DeleteCourse(ctx, course.ID), apperrors.ErrResourceNotFound)
}

func TestCourseService_ListCoursesPaginates(t *testing.T) {
	s, store := newTestServices(t)
	ctx := context.Background()
	programID, _ := catalogFixture(t, store, "BS CS", "CS301", "CS101", "CS201")

	page, err := s.CourseService.ListCourses(ctx, programID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "CS101", page.Items[0].Code)
	assert.Equal(t, "CS201", page.Items[1].Code)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	last, err := s.CourseService.ListCourses(ctx, programID, 2, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "CS301", last.Items[0].Code)

	_, err = s.CourseService.ListCourses(ctx, programID+100, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestPrerequisiteService(t *testing.T) {
	s, store := newTestServices(t)
	ctx := context.Background()
	_, ids := catalogFixture(t, store, "BS Bio", "BIO252", "BIO253", "TCHEM212", "BIO300", "BIO100")

	_, err := s.PrerequisiteService.AddPrerequisite(ctx, ids["BIO300"], ids["BIO100"])
	require.NoError(t, err)

	_, err = s.PrerequisiteService.AddPrerequisite(ctx, ids["BIO300"], ids["BIO100"])
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	_, err = s.PrerequisiteService.AddPrerequisite(ctx, ids["BIO300"], ids["BIO300"])
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = s.PrerequisiteService.AddPrerequisite(ctx, ids["BIO300"], 9999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	or, err := s.PrerequisiteService.CreateGroup(ctx, ids["BIO300"], &dto.CreateGroupRequest{Kind: "or", MemberCourseIDs: []int64{ids["BIO252"], ids["BIO253"]}})
	require.NoError(t, err)
	assert.Equal(t, models.GroupAny, or.Kind)
	require.Len(t, or.Members, 2)
	assert.Equal(t, "BIO252", or.Members[0].Code)

	_, err = s.PrerequisiteService.CreateGroup(ctx, ids["BIO300"], &dto.CreateGroupRequest{Kind: "AND", MemberCourseIDs: []int64{ids["TCHEM212"]}})
	require.NoError(t, err)

	_, err = s.PrerequisiteService.CreateGroup(ctx, ids["BIO300"], &dto.CreateGroupRequest{Kind: "XOR", MemberCourseIDs: []int64{ids["TCHEM212"]}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidGroupKind)

	_, err = s.PrerequisiteService.CreateGroup(ctx, ids["BIO300"], &dto.CreateGroupRequest{Kind: "AND", MemberCourseIDs: []int64{ids["BIO300"]}})
	assert.ErrorIs(t, err, apperrors.ErrSelfPrerequisite)

	req, err := s.PrerequisiteService.GetRequirements(ctx, ids["BIO300"])
	require.NoError(t, err)
	require.Len(t, req.Simple, 1)
	assert.Equal(t, "BIO100", req.Simple[0].Code)
	require.Len(t, req.Groups, 2)
	assert.Equal(t, models.GroupAny, req.Groups[0].Kind)
	assert.Equal(t, models.GroupAll, req.Groups[1].Kind)

	require.NoError(t, s.PrerequisiteService.DeleteGroup(ctx, or.ID))
	assert.ErrorIs(t, s.PrerequisiteService.DeleteGroup(ctx, or.ID), apperrors.ErrResourceNotFound)

	require.NoError(t, s.PrerequisiteService.RemovePrerequisite(ctx, ids["BIO300"], ids["BIO100"]))
	assert.ErrorIs(t, s.PrerequisiteService.RemovePrerequisite(ctx, ids["BIO300"], ids["BIO100"]), apperrors.ErrResourceNotFound)

	req, err = s.PrerequisiteService.GetRequirements(ctx, ids["BIO300"])
	require.NoError(t, err)
	assert.Empty(t, req.Simple)
	assert.Len(t, req.Groups, 1)

	_, err = s.PrerequisiteService.GetRequirements(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
