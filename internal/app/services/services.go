package services

import (
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/auth"
	"github.com/rs/zerolog"

	appAuth "github.com/curriculum/planner/internal/app/auth"
)

// Services bundles every service the HTTP layer depends on.
type Services struct {
	AuthService         AuthService
	ProgramService      ProgramService
	CourseService       CourseService
	PrerequisiteService PrerequisiteService
	GraphService        GraphService
	ProgressService     ProgressService
}

// Stores is the set of repositories the services read and write.
type Stores struct {
	Users         repositories.IUserRepository
	Programs      repositories.IProgramRepository
	Courses       repositories.ICourseRepository
	Prerequisites repositories.IPrerequisiteRepository
	Progress      repositories.IProgressRepository
}

// StoresFrom exposes the Postgres repositories through their interfaces.
func StoresFrom(repos *repositories.Repositories) Stores {
	return Stores{
		Users:         repos.UserRepository,
		Programs:      repos.ProgramRepository,
		Courses:       repos.CourseRepository,
		Prerequisites: repos.PrerequisiteRepository,
		Progress:      repos.ProgressRepository,
	}
}

// NewServices wires every service over stores.
func NewServices(stores Stores, jwtService *auth.JWTService, logger zerolog.Logger) *Services {
	return &Services{
		AuthService:         NewAuthService(stores.Users, jwtService, logger),
		ProgramService:      NewProgramService(stores.Programs, logger),
		CourseService:       NewCourseService(stores.Programs, stores.Courses, logger),
		PrerequisiteService: NewPrerequisiteService(stores.Courses, stores.Prerequisites),
		GraphService:        NewGraphService(stores.Courses, stores.Prerequisites),
		ProgressService:     NewProgressService(stores.Programs, stores.Courses, stores.Prerequisites, stores.Progress, appAuth.NewAuthorizationService(stores.Users)),
	}
}
