package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/auth"
	"github.com/curriculum/planner/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "bearer"

// AuthService defines registration, login and token operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	// Authenticate resolves an access token to its user, enforcing type and revocation.
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type authServiceImpl struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.IUserRepository, jwtService *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) validateRegistration(req *dto.RegisterRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is empty", apperrors.ErrValidationFailed)
	}
	if len(req.Password) < validation.PasswordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrValidationFailed, validation.PasswordMinLength)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: role must be admin, advisor or student", apperrors.ErrValidationFailed)
	}
	return nil
}

// Register creates a user with a bcrypt hashed password
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hash, Role: req.Role}
	if _, err := s.userRepo.CreateUser(ctx, user); err != nil {
		// A concurrent registration can still win the unique index.
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return dto.NewUserResponse(user), nil
}

// Login checks credentials and issues a token pair stamped with the current counter
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(user.ID, user.TokenVersion)
}

// RefreshToken rotates the revocation counter and returns a fresh pair. Every token issued
// before the rotation, including the one presented, stops being accepted.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != auth.TokenTypeRefresh {
		return nil, apperrors.ErrWrongTokenType
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", apperrors.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	version, err := s.userRepo.IncrementTokenVersion(ctx, userID, claims.TokenVersion)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenRevoked) {
			s.logger.Warn().Int64("userID", userID).Msg("Refresh with a revoked token")
		}
		return nil, err
	}

	return s.issueTokens(userID, version)
}

// GetProfile returns the public profile of a user
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// Authenticate verifies an access token against the stored revocation counter
func (s *authServiceImpl) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != auth.TokenTypeAccess {
		return nil, apperrors.ErrWrongTokenType
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", apperrors.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if claims.TokenVersion != user.TokenVersion {
		return nil, apperrors.ErrTokenRevoked
	}
	return user, nil
}

func (s *authServiceImpl) issueTokens(userID int64, tokenVersion int) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(userID, tokenVersion)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to generate tokens")
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(pair.AccessExpiresIn.Seconds()),
	}, nil
}
