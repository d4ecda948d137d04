package controllers

import (
	"net/http"

	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/gin-gonic/gin"
)

// PrerequisiteController handles prerequisite and prerequisite group operations
type PrerequisiteController struct {
	prerequisiteService services.PrerequisiteService
}

// NewPrerequisiteController creates a new PrerequisiteController
func NewPrerequisiteController(prerequisiteService services.PrerequisiteService) *PrerequisiteController {
	return &PrerequisiteController{prerequisiteService: prerequisiteService}
}

// GetRequirements returns the full requirement of a course with AND/OR groups intact
// @Summary Course prerequisites
// @Tags prerequisites
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.RequirementResponse
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/prerequisites [get]
func (c *PrerequisiteController) GetRequirements(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	req, err := c.prerequisiteService.GetRequirements(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, req)
}

// AddPrerequisite links a simple prerequisite
// @Summary Add prerequisite
// @Tags prerequisites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.AddPrerequisiteRequest true "Prerequisite course"
// @Success 201 {object} dto.CreatedResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request or self reference"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Prerequisite already exists"
// @Router /courses/{id}/prerequisites [post]
func (c *PrerequisiteController) AddPrerequisite(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddPrerequisiteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	created, err := c.prerequisiteService.AddPrerequisite(ctx.Request.Context(), courseID, req.PrereqCourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// RemovePrerequisite unlinks a simple prerequisite
// @Summary Remove prerequisite
// @Tags prerequisites
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param prereqId path int true "Prerequisite course ID"
// @Success 204 "Prerequisite removed"
// @Failure 404 {object} dto.ErrorResponse "Prerequisite not found"
// @Router /courses/{id}/prerequisites/{prereqId} [delete]
func (c *PrerequisiteController) RemovePrerequisite(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	prereqID, ok := parseIDParam(ctx, "prereqId")
	if !ok {
		return
	}

	if err := c.prerequisiteService.RemovePrerequisite(ctx.Request.Context(), courseID, prereqID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateGroup adds an AND/OR prerequisite group to a course
// @Summary Create prerequisite group
// @Tags prerequisites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CreateGroupRequest true "Group"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid kind or members"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/prerequisite-groups [post]
func (c *PrerequisiteController) CreateGroup(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	group, err := c.prerequisiteService.CreateGroup(ctx.Request.Context(), courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, group)
}

// DeleteGroup removes a prerequisite group
// @Summary Delete prerequisite group
// @Tags prerequisites
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 204 "Group deleted"
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Router /prerequisite-groups/{groupId} [delete]
func (c *PrerequisiteController) DeleteGroup(ctx *gin.Context) {
	groupID, ok := parseIDParam(ctx, "groupId")
	if !ok {
		return
	}

	if err := c.prerequisiteService.DeleteGroup(ctx.Request.Context(), groupID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
