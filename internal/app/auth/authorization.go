package auth

import (
	"context"
	"fmt"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/logger"
)

// StaffRoles may read any student's plan.
var StaffRoles = []models.RoleType{models.RoleAdmin, models.RoleAdvisor}

// AuthorizationService handles authorization decisions that go beyond a route's role gate
type AuthorizationService struct {
	userRepo repositories.IUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// HasRole reports whether the user holds one of roles
func (s *AuthorizationService) HasRole(user *models.User, roles ...models.RoleType) bool {
	return user != nil && user.Role.In(roles...)
}

// ValidateRole returns a forbidden error unless the user holds one of roles
func (s *AuthorizationService) ValidateRole(user *models.User, roles ...models.RoleType) error {
	if s.HasRole(user, roles...) {
		return nil
	}
	return apperrors.NewForbiddenError(fmt.Sprintf("role %q is not allowed to perform this action", roleOf(user)))
}

// CanViewProgress allows users to read their own plan and staff to read anyone's.
// The target user must exist.
func (s *AuthorizationService) CanViewProgress(ctx context.Context, actor *models.User, targetUserID int64) error {
	if actor == nil {
		return apperrors.ErrPermissionDenied
	}
	if actor.ID != targetUserID {
		if err := s.ValidateRole(actor, StaffRoles...); err != nil {
			return err
		}
	}

	if _, err := s.userRepo.GetUserByID(ctx, targetUserID); err != nil {
		if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			logger.Error().Err(err).Int64("userID", targetUserID).Msg("Error getting user by ID in CanViewProgress")
		}
		return err
	}
	return nil
}

func roleOf(user *models.User) models.RoleType {
	if user == nil {
		return ""
	}
	return user.Role
}
