package models

import "time"

// Course represents a course offered by a program.
type Course struct {
	ID          int64     `json:"id" db:"id"`
	ProgramID   int64     `json:"programId" db:"program_id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Credits     *int      `json:"credits,omitempty" db:"credits"`         // Nullable
	Description *string   `json:"description,omitempty" db:"description"` // Nullable
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Ref returns the short form of the course used in prerequisite listings.
func (c *Course) Ref() CourseRef {
	return CourseRef{ID: c.ID, Code: c.Code, Name: c.Name}
}

// CourseRef identifies a course in joins where the full row is not needed.
type CourseRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
