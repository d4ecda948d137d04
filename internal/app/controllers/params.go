package controllers

import (
	"fmt"
	"strconv"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive int64 path parameter, answering 400 when it is malformed.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(fmt.Sprintf("invalid %s: must be a positive integer", name)))
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user, answering 401 when JWTAuth did not run.
func currentUser(ctx *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrMissingToken)
		return nil, false
	}
	return user, true
}
