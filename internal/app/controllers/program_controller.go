package controllers

import (
	"net/http"

	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ProgramController handles program operations
type ProgramController struct {
	programService services.ProgramService
}

// NewProgramController creates a new ProgramController
func NewProgramController(programService services.ProgramService) *ProgramController {
	return &ProgramController{programService: programService}
}

// GetAllPrograms lists programs
// @Summary List programs
// @Tags programs
// @Produce json
// @Success 200 {array} dto.ProgramResponse
// @Router /programs [get]
func (c *ProgramController) GetAllPrograms(ctx *gin.Context) {
	programs, err := c.programService.GetAllPrograms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, programs)
}

// GetProgramByID retrieves a program
// @Summary Get program
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} dto.ProgramResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid program ID"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [get]
func (c *ProgramController) GetProgramByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	program, err := c.programService.GetProgramByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, program)
}

// CreateProgram handles program creation
// @Summary Create program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProgramRequest true "Program"
// @Success 201 {object} dto.ProgramResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Program already exists"
// @Router /programs [post]
func (c *ProgramController) CreateProgram(ctx *gin.Context) {
	var req dto.CreateProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	program, err := c.programService.CreateProgram(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, program)
}

// DeleteProgram removes a program and everything under it
// @Summary Delete program
// @Tags programs
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 204 "Program deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [delete]
func (c *ProgramController) DeleteProgram(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.programService.DeleteProgram(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
