package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/repositories/repotest"
	"github.com/curriculum/planner/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "service-test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 7 * 24 * time.Hour,
		TokenIssuer:     "curriculum-test",
	})
}

func newTestServices(t *testing.T) (*Services, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	stores := Stores{Users: store, Programs: store, Courses: store, Prerequisites: store, Progress: store}
	return NewServices(stores, newJWT(), zerolog.Nop()), store
}

// catalogFixture creates a program and one course per code, returning ids by code.
func catalogFixture(t *testing.T, store *repotest.Store, program string, codes ...string) (int64, map[string]int64) {
	t.Helper()
	ctx := context.Background()

	programID, err := store.CreateProgram(ctx, &models.Program{Name: program})
	require.NoError(t, err)

	ids := make(map[string]int64, len(codes))
	for _, code := range codes {
		id, err := store.CreateCourse(ctx, &models.Course{ProgramID: programID, Code: code, Name: code + " name"})
		require.NoError(t, err)
		ids[code] = id
	}
	return programID, ids
}
