// Package seed populates a fresh database with a demo program and an optional admin user.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/config"
	"github.com/curriculum/planner/internal/db"
	"github.com/curriculum/planner/internal/importer"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/auth"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// DemoProgram is the name of the seeded program.
const DemoProgram = "BS Computer Science"

type demoCourse struct {
	code, name, description string
	credits                 int
}

var demoCourses = []demoCourse{
	{"CS101", "Intro to CS", "Basics of computing", 4},
	{"CS102", "Data Structures", "Core data structures", 4},
	{"CS201", "Algorithms", "Algorithm design and analysis", 4},
	{"CS202", "Computer Architecture", "CPU, memory, and hardware", 4},
	{"CS301", "Operating Systems", "Processes, threads, concurrency", 4},
	{"CS302", "Databases", "Relational databases & SQL", 4},
	{"CS401", "Networks", "Networking fundamentals", 4},
	{"CS402", "Machine Learning", "Intro to ML techniques", 4},
	{"BIO252", "Cell Biology", "Intro to cells", 4},
	{"BIO253", "Genetics", "Genetics basics", 4},
	{"TCHEM212", "Organic Chemistry", "Organic molecules", 4},
	{"BIO300", "Advanced Biology", "Advanced topics in biology", 4},
}

// course -> prerequisite
var demoPrerequisites = [][2]string{
	{"CS102", "CS101"},
	{"CS201", "CS102"},
	{"CS202", "CS101"},
	{"CS301", "CS201"},
	{"CS302", "CS201"},
	{"CS401", "CS202"},
	{"CS402", "CS302"},
}

type demoGroup struct {
	course  string
	kind    models.GroupKind
	members []string
}

// BIO300 requires (BIO252 OR BIO253) AND TCHEM212.
var demoGroups = []demoGroup{
	{"BIO300", models.GroupAny, []string{"BIO252", "BIO253"}},
	{"BIO300", models.GroupAll, []string{"TCHEM212"}},
}

// Store is what seeding writes through.
type Store interface {
	importer.Store
	AddPrerequisite(ctx context.Context, courseID, prereqCourseID int64) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (int64, error)
}

type repoStore struct {
	repositories.IProgramRepository
	repositories.ICourseRepository
	repositories.IPrerequisiteRepository
	repositories.IUserRepository
}

// NewStore builds a Store over a set of repositories.
func NewStore(repos *repositories.Repositories) Store {
	return repoStore{repos.ProgramRepository, repos.CourseRepository, repos.PrerequisiteRepository, repos.UserRepository}
}

// Summary counts what a seed run created.
type Summary struct {
	ProgramCreated bool
	CoursesCreated int
	Prerequisites  int
	Groups         int
	AdminCreated   bool
}

// Run seeds the demo catalog and, when adminEmail is set, an admin account. Existing rows are
// kept, so running it twice changes nothing. The demo groups are rewritten on every run.
func Run(ctx context.Context, store Store, adminEmail, adminPassword string, lgr zerolog.Logger) (*Summary, error) {
	summary := &Summary{}

	lgr.Info().Str("program", DemoProgram).Msg("Checking/Creating demo curriculum...")
	programID, created, err := store.EnsureProgram(ctx, DemoProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to create demo program: %w", err)
	}
	summary.ProgramCreated = created

	ids := make(map[string]int64, len(demoCourses))
	for _, c := range demoCourses {
		credits, description := c.credits, c.description
		id, created, err := store.EnsureCourse(ctx, &models.Course{
			ProgramID:   programID,
			Code:        c.code,
			Name:        c.name,
			Credits:     &credits,
			Description: &description,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create course %s: %w", c.code, err)
		}
		if created {
			summary.CoursesCreated++
		}
		ids[c.code] = id
	}

	for _, p := range demoPrerequisites {
		_, err := store.AddPrerequisite(ctx, ids[p[0]], ids[p[1]])
		switch {
		case errors.Is(err, apperrors.ErrPrerequisiteExists):
		case err != nil:
			return nil, fmt.Errorf("failed to add prerequisite %s -> %s: %w", p[1], p[0], err)
		default:
			summary.Prerequisites++
		}
	}

	cleared := make(map[string]bool)
	for _, g := range demoGroups {
		if !cleared[g.course] {
			if err := store.DeleteGroupsByCourse(ctx, ids[g.course]); err != nil {
				return nil, fmt.Errorf("failed to clear groups of %s: %w", g.course, err)
			}
			cleared[g.course] = true
		}
		members := make([]int64, 0, len(g.members))
		for _, code := range g.members {
			members = append(members, ids[code])
		}
		if _, err := store.CreateGroup(ctx, ids[g.course], g.kind, members); err != nil {
			return nil, fmt.Errorf("failed to create %s group for %s: %w", g.kind, g.course, err)
		}
		summary.Groups++
	}

	if adminEmail != "" {
		created, err := ensureAdmin(ctx, store, adminEmail, adminPassword, lgr)
		if err != nil {
			return nil, err
		}
		summary.AdminCreated = created
	}

	lgr.Info().
		Bool("programCreated", summary.ProgramCreated).
		Int("coursesCreated", summary.CoursesCreated).
		Int("prerequisites", summary.Prerequisites).
		Int("groups", summary.Groups).
		Bool("adminCreated", summary.AdminCreated).
		Msg("Seed data applied")
	return summary, nil
}

func ensureAdmin(ctx context.Context, store Store, email, password string, lgr zerolog.Logger) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	id, err := store.CreateUser(ctx, &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin})
	if err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	lgr.Info().Int64("adminID", id).Str("email", email).Msg("Default admin user created")
	return true, nil
}

// CreateDefaultData seeds the database in one transaction using the seed section of cfg.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, cfg *config.Config, lgr zerolog.Logger) (*Summary, error) {
	var summary *Summary
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		summary, err = Run(ctx, NewStore(repositories.NewRepositories(tx)), cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, lgr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
