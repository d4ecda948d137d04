package controllers

import (
	"net/http"

	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/services"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ProgressController handles a student's course plan
type ProgressController struct {
	progressService services.ProgressService
}

// NewProgressController creates a new ProgressController
func NewProgressController(progressService services.ProgressService) *ProgressController {
	return &ProgressController{progressService: progressService}
}

// ListMyProgress lists the caller's progress records
// @Summary My progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProgressResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /progress [get]
func (c *ProgressController) ListMyProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	items, err := c.progressService.ListProgress(ctx.Request.Context(), user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// SetProgress records the caller's status for a course
// @Summary Set course status
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param request body dto.SetProgressRequest true "Status"
// @Success 200 {object} dto.ProgressResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /progress/{courseId} [put]
func (c *ProgressController) SetProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	var req dto.SetProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	record, err := c.progressService.SetProgress(ctx.Request.Context(), user.ID, courseID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, record)
}

// DeleteProgress removes the caller's record for a course
// @Summary Clear course status
// @Tags progress
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 204 "Record removed"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /progress/{courseId} [delete]
func (c *ProgressController) DeleteProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.progressService.DeleteProgress(ctx.Request.Context(), user.ID, courseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetUserProgress lists another user's progress records
// @Summary User progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} dto.ProgressResponse
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id}/progress [get]
func (c *ProgressController) GetUserProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	items, err := c.progressService.GetUserProgress(ctx.Request.Context(), user, targetID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// EligibleCourses lists the program courses the caller can take next
// @Summary Eligible courses
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {array} dto.CourseResponse
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id}/eligible [get]
func (c *ProgressController) EligibleCourses(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	courses, err := c.progressService.EligibleCourses(ctx.Request.Context(), user.ID, programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, courses)
}
