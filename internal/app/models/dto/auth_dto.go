package dto

import "github.com/curriculum/planner/internal/app/models"

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string          `json:"email" binding:"required,email" example:"student@university.edu"`
	Password string          `json:"password" binding:"required,min=8" example:"s3cretpass"`
	Role     models.RoleType `json:"role" binding:"required,oneof=admin advisor student" example:"student"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"bearer"`
	ExpiresIn    int64  `json:"expires_in" example:"900"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID    int64           `json:"id" example:"1"`
	Email string          `json:"email" example:"student@university.edu"`
	Role  models.RoleType `json:"role" example:"student"`
}

// AdminGreetingResponse is returned by the admin probe route.
type AdminGreetingResponse struct {
	Msg string `json:"msg" example:"Hello admin admin@university.edu"`
}

// NewUserResponse maps a user onto its public profile.
func NewUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}
}
