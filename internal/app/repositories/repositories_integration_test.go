package repositories_test

import (
	"context"
	"os"
	"testing"

	"github.com/curriculum/planner/internal/app/migrations"
	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTx migrates a private schema and returns repositories bound to a transaction that is
// rolled back when the test ends.
func newTestTx(t *testing.T) (*repositories.Repositories, context.Context) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping repository integration test")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(admin.Close)
	_, err = admin.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS repositories_test`)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = "repositories_test"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	m, err := migrations.NewMigrator(pool, zerolog.Nop())
	require.NoError(t, err)
	_, err = m.Up(ctx)
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(ctx) })

	return repositories.NewRepositories(tx), ctx
}

func TestUserRepository_TokenVersion(t *testing.T) {
	repos, ctx := newTestTx(t)
	users := repos.UserRepository

	id, err := users.CreateUser(ctx, &models.User{Email: "it@example.edu", PasswordHash: "x", Role: models.RoleStudent})
	require.NoError(t, err)

	exists, err := users.EmailExists(ctx, "it@example.edu")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = users.CreateUser(ctx, &models.User{Email: "it@example.edu", PasswordHash: "x", Role: models.RoleStudent})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	v, err := users.IncrementTokenVersion(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = users.IncrementTokenVersion(ctx, id, 0)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestCatalogRepositories(t *testing.T) {
	repos, ctx := newTestTx(t)

	programID, created, err := repos.ProgramRepository.EnsureProgram(ctx, "IT Program")
	require.NoError(t, err)
	assert.True(t, created)
	again, created, err := repos.ProgramRepository.EnsureProgram(ctx, "IT Program")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, programID, again)

	ids := map[string]int64{}
	for _, code := range []string{"IT101", "IT102", "IT201", "IT202"} {
		id, err := repos.CourseRepository.CreateCourse(ctx, &models.Course{ProgramID: programID, Code: code, Name: "Course " + code})
		require.NoError(t, err)
		ids[code] = id
	}
	_, err = repos.CourseRepository.CreateCourse(ctx, &models.Course{ProgramID: programID, Code: "IT101", Name: "Dup"})
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	courses, total, err := repos.CourseRepository.ListCoursesByProgram(ctx, programID, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, courses, 2)

	prereqs := repos.PrerequisiteRepository
	_, err = prereqs.AddPrerequisite(ctx, ids["IT102"], ids["IT101"])
	require.NoError(t, err)
	_, err = prereqs.AddPrerequisite(ctx, ids["IT102"], ids["IT101"])
	assert.ErrorIs(t, err, apperrors.ErrPrerequisiteExists)

	_, err = prereqs.CreateGroup(ctx, ids["IT202"], models.GroupAny, []int64{ids["IT201"], ids["IT102"]})
	require.NoError(t, err)

	simple, err := prereqs.GetPrerequisitesByProgram(ctx, programID)
	require.NoError(t, err)
	require.Len(t, simple, 1)
	assert.Equal(t, "IT101", simple[0].Prereq.Code)

	groups, err := prereqs.GetGroupsByCourse(ctx, ids["IT202"])
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, models.GroupAny, groups[0].Kind)
	assert.Len(t, groups[0].Members, 2)

	require.NoError(t, prereqs.DeleteGroupsByCourse(ctx, ids["IT202"]))
	groups, err = prereqs.GetGroupsByProgram(ctx, programID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	require.NoError(t, repos.CourseRepository.DeleteCourse(ctx, ids["IT101"]))
	simple, err = prereqs.GetPrerequisitesByCourse(ctx, ids["IT102"])
	require.NoError(t, err)
	assert.Empty(t, simple)
}

func TestProgressRepository(t *testing.T) {
	repos, ctx := newTestTx(t)

	userID, err := repos.UserRepository.CreateUser(ctx, &models.User{Email: "progress@example.edu", PasswordHash: "x", Role: models.RoleStudent})
	require.NoError(t, err)
	programID, _, err := repos.ProgramRepository.EnsureProgram(ctx, "Progress Program")
	require.NoError(t, err)
	courseID, err := repos.CourseRepository.CreateCourse(ctx, &models.Course{ProgramID: programID, Code: "PR101", Name: "Progress"})
	require.NoError(t, err)

	progress := &models.StudentProgress{UserID: userID, CourseID: courseID, Status: models.ProgressPlanned}
	require.NoError(t, repos.ProgressRepository.UpsertProgress(ctx, progress))
	progress.Status = models.ProgressCompleted
	require.NoError(t, repos.ProgressRepository.UpsertProgress(ctx, progress))

	list, err := repos.ProgressRepository.GetProgressByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ProgressCompleted, list[0].Status)
	require.NotNil(t, list[0].Course)
	assert.Equal(t, "PR101", list[0].Course.Code)

	completed, err := repos.ProgressRepository.GetCompletedCourseIDs(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []int64{courseID}, completed)

	require.NoError(t, repos.ProgressRepository.DeleteProgress(ctx, userID, courseID))
	assert.ErrorIs(t, repos.ProgressRepository.DeleteProgress(ctx, userID, courseID), apperrors.ErrProgressNotFound)
}
