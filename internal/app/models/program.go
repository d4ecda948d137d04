package models

import "time"

// Program is a degree program owning a set of courses.
type Program struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Name      string    `json:"name" db:"name" example:"BS Computer Science"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
