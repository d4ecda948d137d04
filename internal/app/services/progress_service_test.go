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

func codes(courses []*dto.CourseResponse) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Code)
	}
	return out
}

func TestProgressService_SetListDelete(t *testing.T) {
	s, store := newTestServices(t)
	ctx := context.Background()
	_, ids := catalogFixture(t, store, "BS CS", "CS102", "CS101")
	student, _ := registerAndLogin(t, s.AuthService, "stu@example.com", models.RoleStudent)

	rec, err := s.ProgressService.SetProgress(ctx, student.ID, ids["CS101"], models.ProgressPlanned)
	require.NoError(t, err)
	assert.Equal(t, "CS101", rec.CourseCode)

	again, err := s.ProgressService.SetProgress(ctx, student.ID, ids["CS101"], models.ProgressCompleted)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)

	_, err = s.ProgressService.SetProgress(ctx, student.ID, ids["CS102"], models.ProgressInProgress)
	require.NoError(t, err)

	_, err = s.ProgressService.SetProgress(ctx, student.ID, ids["CS102"], "dropped")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = s.ProgressService.SetProgress(ctx, student.ID, 9999, models.ProgressPlanned)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	list, err := s.ProgressService.ListProgress(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CS101", list[0].CourseCode)
	assert.Equal(t, models.ProgressCompleted, list[0].Status)

	require.NoError(t, s.ProgressService.DeleteProgress(ctx, student.ID, ids["CS102"]))
	assert.ErrorIs(t, s.ProgressService.DeleteProgress(ctx, student.ID, ids["CS102"]), apperrors.ErrResourceNotFound)
}

func TestProgressService_GetUserProgressAuthorization(t *testing.T) {
	s, store := newTestServices(t)
	ctx := context.Background()
	_, ids := catalogFixture(t, store, "BS CS", "CS101")

	student, _ := registerAndLogin(t, s.AuthService, "stu@example.com", models.RoleStudent)
	other, _ := registerAndLogin(t, s.AuthService, "other@example.com", models.RoleStudent)
	advisor, _ := registerAndLogin(t, s.AuthService, "adv@example.com", models.RoleAdvisor)

	_, err := s.ProgressService.SetProgress(ctx, student.ID, ids["CS101"], models.ProgressCompleted)
	require.NoError(t, err)

	asUser := func(u *dto.UserResponse) *models.User {
		return &models.User{ID: u.ID, Email: u.Email, Role: u.Role}
	}

	list, err := s.ProgressService.GetUserProgress(ctx, asUser(advisor), student.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.ProgressService.GetUserProgress(ctx, asUser(student), student.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.ProgressService.GetUserProgress(ctx, asUser(other), student.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = s.ProgressService.GetUserProgress(ctx, asUser(advisor), 9999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestProgressService_EligibleCourses(t *testing.T) {
	s, store := newTestServices(t)
	ctx := context.Background()
	programID, ids := catalogFixture(t, store, "BS Bio", "BIO100", "BIO252", "BIO253", "TCHEM212", "BIO300")
	student, _ := registerAndLogin(t, s.AuthService, "stu@example.com", models.RoleStudent)

	// BIO300 = BIO100 AND (BIO252 OR BIO253) AND TCHEM212
	_, err := store.AddPrerequisite(ctx, ids["BIO300"], ids["BIO100"])
	require.NoError(t, err)
	_, err = store.CreateGroup(ctx, ids["BIO300"], models.GroupAny, []int64{ids["BIO252"], ids["BIO253"]})
	require.NoError(t, err)
	_, err = store.CreateGroup(ctx, ids["BIO300"], models.GroupAll, []int64{ids["TCHEM212"]})
	require.NoError(t, err)

	eligible, err := s.ProgressService.EligibleCourses(ctx, student.ID, programID)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIO100", "BIO252", "BIO253", "TCHEM212"}, codes(eligible))

	for _, code := range []string{"BIO100", "BIO253", "TCHEM212"} {
		_, err := s.ProgressService.SetProgress(ctx, student.ID, ids[code], models.ProgressCompleted)
		require.NoError(t, err)
	}
	// In-progress work does not count toward a requirement.
	_, err = s.ProgressService.SetProgress(ctx, student.ID, ids["BIO252"], models.ProgressInProgress)
	require.NoError(t, err)

	eligible, err = s.ProgressService.EligibleCourses(ctx, student.ID, programID)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIO252", "BIO300"}, codes(eligible))

	_, err = s.ProgressService.EligibleCourses(ctx, student.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
