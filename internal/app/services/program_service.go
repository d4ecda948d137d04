package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// ProgramService defines program catalog operations
type ProgramService interface {
	CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error)
	GetProgramByID(ctx context.Context, id int64) (*dto.ProgramResponse, error)
	GetAllPrograms(ctx context.Context) ([]*dto.ProgramResponse, error)
	DeleteProgram(ctx context.Context, id int64) error
}

type programServiceImpl struct {
	programRepo repositories.IProgramRepository
	logger      zerolog.Logger
}

// NewProgramService creates a new ProgramService
func NewProgramService(programRepo repositories.IProgramRepository, logger zerolog.Logger) ProgramService {
	return &programServiceImpl{programRepo: programRepo, logger: logger}
}

func validateProgramName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: program name cannot be empty", apperrors.ErrValidationFailed)
	}
	return name, nil
}

func (s *programServiceImpl) CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error) {
	name, err := validateProgramName(req.Name)
	if err != nil {
		return nil, err
	}

	program := &models.Program{Name: name}
	if _, err := s.programRepo.CreateProgram(ctx, program); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("programID", program.ID).Str("name", program.Name).Msg("Program created")
	return dto.NewProgramResponse(program), nil
}

func (s *programServiceImpl) GetProgramByID(ctx context.Context, id int64) (*dto.ProgramResponse, error) {
	program, err := s.programRepo.GetProgramByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewProgramResponse(program), nil
}

func (s *programServiceImpl) GetAllPrograms(ctx context.Context) ([]*dto.ProgramResponse, error) {
	programs, err := s.programRepo.GetAllPrograms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProgramResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, dto.NewProgramResponse(p))
	}
	return out, nil
}

// DeleteProgram removes a program together with its courses and their prerequisite rows
func (s *programServiceImpl) DeleteProgram(ctx context.Context, id int64) error {
	if err := s.programRepo.DeleteProgram(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("programID", id).Msg("Program deleted")
	return nil
}
