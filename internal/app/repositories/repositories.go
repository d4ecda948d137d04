package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/curriculum/planner/internal/db"
)

// psql is the statement builder every repository shares.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ProgramRepository      *ProgramRepository
	CourseRepository       *CourseRepository
	PrerequisiteRepository *PrerequisiteRepository
	ProgressRepository     *ProgressRepository
}

// NewRepositories initializes all repositories over database, which may be the pool or a transaction.
func NewRepositories(database db.DBTX) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(database),
		ProgramRepository:      NewProgramRepository(database),
		CourseRepository:       NewCourseRepository(database),
		PrerequisiteRepository: NewPrerequisiteRepository(database),
		ProgressRepository:     NewProgressRepository(database),
	}
}
