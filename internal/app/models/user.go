package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Email        string    `json:"email" db:"email" example:"advisor@university.edu"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         RoleType  `json:"role" db:"role" example:"student"`
	TokenVersion int       `json:"-" db:"token_version"` // bumped on every refresh; tokens carrying an older value are revoked
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
