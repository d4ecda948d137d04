package controllers

import (
	"github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

// Controllers groups every HTTP controller.
type Controllers struct {
	Auth         *AuthController
	Program      *ProgramController
	Course       *CourseController
	Prerequisite *PrerequisiteController
	Graph        *GraphController
	Progress     *ProgressController
	Health       *HealthController
	Import       *ImportController
}

// NewControllers builds the controllers over svc. db backs the health probe and may be nil.
func NewControllers(svc *services.Services, db Pinger, catalog CatalogImporter, uploads filestorage.FileStorage, logger zerolog.Logger) *Controllers {
	return &Controllers{
		Auth:         NewAuthController(svc.AuthService, logger),
		Program:      NewProgramController(svc.ProgramService),
		Course:       NewCourseController(svc.CourseService),
		Prerequisite: NewPrerequisiteController(svc.PrerequisiteService),
		Graph:        NewGraphController(svc.GraphService),
		Progress:     NewProgressController(svc.ProgressService),
		Health:       NewHealthController(db, logger),
		Import:       NewImportController(catalog, uploads, logger),
	}
}
