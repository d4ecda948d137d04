package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/db"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/dberrors"
	"github.com/curriculum/planner/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// IncrementTokenVersion bumps the revocation counter only if it still equals expected
	// and returns the new value; apperrors.ErrTokenRevoked when it no longer matches.
	IncrementTokenVersion(ctx context.Context, id int64, expected int) (int, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database db.DBTX) *UserRepository {
	return &UserRepository{db: database, sb: psql}
}

var userColumns = []string{"id", "email", "password_hash", "role", "token_version", "created_at", "updated_at"}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// CreateUser inserts a user and returns the new id
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password_hash", "role").
		Values(user.Email, user.PasswordHash, string(user.Role)).
		Suffix("RETURNING id, token_version, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return user.ID, nil
}

func (r *UserRepository) getUser(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": id})
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"email": email})
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sql, args, err := r.sb.Select("1").From("users").Where(squirrel.Eq{"email": email}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building email exists SQL")
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error executing email exists query")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// IncrementTokenVersion performs the compare-and-increment on the revocation counter.
func (r *UserRepository) IncrementTokenVersion(ctx context.Context, id int64, expected int) (int, error) {
	sql, args, err := r.sb.Update("users").
		Set("token_version", squirrel.Expr("token_version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "token_version": expected}).
		Suffix("RETURNING token_version").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building increment token version SQL")
		return 0, fmt.Errorf("failed to build increment token version query: %w", err)
	}

	var version int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrTokenRevoked
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error incrementing token version")
		return 0, fmt.Errorf("error incrementing token version: %w", err)
	}
	return version, nil
}
